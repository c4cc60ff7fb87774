package uncore

import (
	"fmt"
	"strconv"

	"github.com/go-logr/logr"
)

const (
	PluginName = "uncore"

	// MaxFreqKHzDeltaOption is the only tunable: an offset in kHz subtracted
	// from initial_max_freq_khz.
	MaxFreqKHzDeltaOption = "max_freq_khz_delta"
)

// Plugin exposes uncore domains to a generic tuning host. It owns the domain
// registry and the delta controller, both wired to the same boundary.
type Plugin struct {
	registry   *Registry
	controller *DeltaController
	log        logr.Logger
}

// Boundary is what the plugin needs from the hardware interface.
type Boundary interface {
	FrequencyStore
	DomainLister
}

func NewPlugin(boundary Boundary, log logr.Logger) *Plugin {
	return &Plugin{
		registry:   NewRegistry(boundary, log.WithName("registry")),
		controller: NewDeltaController(boundary, log.WithName("controller")),
		log:        log,
	}
}

func (p *Plugin) Name() string {
	return PluginName
}

func (p *Plugin) Registry() *Registry {
	return p.registry
}

func (p *Plugin) Controller() *DeltaController {
	return p.controller
}

// Discover enumerates the domains and returns their identifiers.
func (p *Plugin) Discover() []string {
	domains := p.registry.Discover()
	ids := make([]string, 0, len(domains))
	for _, d := range domains {
		ids = append(ids, d.ID)
	}
	return ids
}

func (p *Plugin) DeclareOptions() map[string]string {
	return map[string]string{
		MaxFreqKHzDeltaOption: "0",
	}
}

func (p *Plugin) Assign(device string) error {
	_, err := p.registry.Assign(device)
	return err
}

func (p *Plugin) Release(device string) error {
	return p.registry.Release(device)
}

// Apply sets the delta of a domain and returns it in canonical form. Only
// assigned domains are written; a simulated apply accepts any discovered one.
func (p *Plugin) Apply(device, option, value string, simulate bool) (string, error) {
	if option != MaxFreqKHzDeltaOption {
		return "", fmt.Errorf("%w: %s", ErrUnknownOption, option)
	}
	if _, known := p.registry.Lookup(device); !known {
		return "", fmt.Errorf("%w: %s", ErrUnknownDomain, device)
	}
	if !simulate && !p.registry.IsAssigned(device) {
		return "", fmt.Errorf("%w: %s", ErrDomainNotAssigned, device)
	}

	applied, err := p.controller.Apply(device, value, simulate)
	if err != nil {
		return "", err
	}

	p.log.V(4).Info("uncore max frequency delta applied",
		"domain", device, "delta", applied.Delta, "maxFreqKHz", applied.EffectiveMaxKHz, "simulate", simulate)

	return strconv.Itoa(applied.Delta), nil
}

// Query reads back the active delta of a domain. A domain that was never
// discovered is reported absent when tolerateMissing is set.
func (p *Plugin) Query(device, option string, tolerateMissing bool) (string, bool, error) {
	if option != MaxFreqKHzDeltaOption {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownOption, option)
	}
	if _, known := p.registry.Lookup(device); !known {
		if tolerateMissing {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %s", ErrUnknownDomain, device)
	}

	delta, present, err := p.controller.Query(device, tolerateMissing)
	if err != nil || !present {
		return "", present, err
	}
	return strconv.Itoa(delta), true, nil
}
