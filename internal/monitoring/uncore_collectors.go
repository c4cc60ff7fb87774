package monitoring

import (
	"github.com/AMDEPYC/uncore-frequency-manager/internal/uncore"

	"github.com/go-logr/logr"
	prom "github.com/prometheus/client_golang/prometheus"
)

// DomainInspector reads the frequency state of uncore domains. It is
// implemented by uncore.DeltaController.
type DomainInspector interface {
	Bounds(domainID string) (uncore.FrequencyBounds, error)
	CurrentMax(domainID string) (int, error)
	Query(domainID string, tolerateMissing bool) (int, bool, error)
}

// DomainSource lists the uncore domains currently known. It is implemented by
// uncore.Registry.
type DomainSource interface {
	Domains() []uncore.Domain
}

// RegisterUncoreCollectors registers per domain frequency gauges. Domains that
// cannot report a metric at scrape time are left out of it.
func RegisterUncoreCollectors(reg prom.Registerer, inspector DomainInspector, source DomainSource,
	logger logr.Logger) error {
	logger = logger.WithName(uncoreSubsystem)

	collectors := []prom.Collector{
		newPerDomainCollector(
			prom.BuildFQName(promNamespace, uncoreSubsystem, "initial_min_freq_khz"),
			"Gauge of hardware reported minimum uncore frequency in kHz",
			prom.GaugeValue,
			source.Domains,
			func(id string) (int, error) {
				bounds, err := inspector.Bounds(id)
				return bounds.InitialMinKHz, err
			},
			logger.WithValues(logNameKey, "initial_min_freq_khz"),
		),
		newPerDomainCollector(
			prom.BuildFQName(promNamespace, uncoreSubsystem, "initial_max_freq_khz"),
			"Gauge of hardware reported maximum uncore frequency in kHz",
			prom.GaugeValue,
			source.Domains,
			func(id string) (int, error) {
				bounds, err := inspector.Bounds(id)
				return bounds.InitialMaxKHz, err
			},
			logger.WithValues(logNameKey, "initial_max_freq_khz"),
		),
		newPerDomainCollector(
			prom.BuildFQName(promNamespace, uncoreSubsystem, "max_freq_khz"),
			"Gauge of currently enforced maximum uncore frequency in kHz",
			prom.GaugeValue,
			source.Domains,
			inspector.CurrentMax,
			logger.WithValues(logNameKey, "max_freq_khz"),
		),
		newPerDomainCollector(
			prom.BuildFQName(promNamespace, uncoreSubsystem, "max_freq_khz_delta"),
			"Gauge of the active offset from the hardware maximum uncore frequency in kHz",
			prom.GaugeValue,
			source.Domains,
			func(id string) (int, error) {
				delta, _, err := inspector.Query(id, false)
				return delta, err
			},
			logger.WithValues(logNameKey, "max_freq_khz_delta"),
		),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
