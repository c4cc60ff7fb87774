package monitoring

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/AMDEPYC/uncore-frequency-manager/internal/uncore"

	"github.com/go-logr/logr"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Helper constants for prom Collectors
const (
	promNamespace string = "power"

	LogTopName      string = "monitoring"
	uncoreSubsystem string = "uncore"

	logNameKey string = "name"
)

type collectorImpl struct {
	collectFunc  func(ch chan<- prom.Metric)
	describeFunc func(ch chan<- *prom.Desc)
}

func (c collectorImpl) Collect(ch chan<- prom.Metric) {
	c.collectFunc(ch)
}

func (c collectorImpl) Describe(ch chan<- *prom.Desc) {
	c.describeFunc(ch)
}

type number interface {
	constraints.Integer | constraints.Float
}

// newPerDomainCollector is generic factory of prometheus Collectors for metrics that are uncore domain bound.
// domains is called on every scrape, so domains found by a later re-scan are picked up.
// readFunc is called on every scrape, values are never cached. Domains it fails for are left out.
// log is Logger that should have all Names, KeysValues and other... already attached.
// return prometheus Collector that is ready for registration
func newPerDomainCollector[T number](metricName, metricDesc string, metricType prom.ValueType,
	domains func() []uncore.Domain, readFunc func(string) (T, error), log logr.Logger,
) prom.Collector {
	desc := prom.NewDesc(
		metricName,
		metricDesc,
		[]string{"domain", "scheme"},
		nil,
	)
	log.V(4).Info("New perDomain prometheus Collector created")

	return collectorImpl{
		describeFunc: func(ch chan<- *prom.Desc) {
			ch <- desc
		},
		collectFunc: func(ch chan<- prom.Metric) {
			for _, domain := range domains() {
				log.V(5).Info("Collecting metrics for prometheus", "domain", domain.ID)
				val, err := readFunc(domain.ID)
				if err != nil {
					log.V(5).Info(fmt.Sprintf("error reading metric value, err: %v", err), "domain", domain.ID)
					continue
				}
				ch <- prom.MustNewConstMetric(
					desc,
					metricType,
					float64(val),
					domain.ID,
					domain.Scheme.String(),
				)
			}
		},
	}
}
