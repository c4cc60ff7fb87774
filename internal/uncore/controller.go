package uncore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// DeltaController validates and applies max frequency deltas. It holds no
// state of its own; bounds and the current ceiling are read fresh on each
// call. Calls for the same domain must be serialized by the caller.
type DeltaController struct {
	store FrequencyStore
	log   logr.Logger
}

func NewDeltaController(store FrequencyStore, log logr.Logger) *DeltaController {
	return &DeltaController{store: store, log: log}
}

// ParseDelta parses a delta value in kHz.
func ParseDelta(value string) (int, error) {
	delta, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: max_freq_khz_delta value '%s' is not integer", ErrInvalidInput, value)
	}
	return delta, nil
}

// Bounds reads the hardware reported floor and ceiling of a domain.
func (c *DeltaController) Bounds(domainID string) (FrequencyBounds, error) {
	maxKHz, _, err := c.store.ReadBound(domainID, InitialMaxFreqAttr, false)
	if err != nil {
		return FrequencyBounds{}, fmt.Errorf("%w: %w", ErrBoundsUnavailable, err)
	}
	minKHz, _, err := c.store.ReadBound(domainID, InitialMinFreqAttr, false)
	if err != nil {
		return FrequencyBounds{}, fmt.Errorf("%w: %w", ErrBoundsUnavailable, err)
	}
	return FrequencyBounds{InitialMinKHz: minKHz, InitialMaxKHz: maxKHz}, nil
}

// CurrentMax reads the currently enforced ceiling of a domain.
func (c *DeltaController) CurrentMax(domainID string) (int, error) {
	current, _, err := c.store.ReadBound(domainID, MaxFreqAttr, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBoundsUnavailable, err)
	}
	return current, nil
}

// Apply caps the domain ceiling to initial_max_freq_khz minus the requested
// delta. All validation happens before the single write, so a rejected
// request leaves the hardware untouched. With simulate set nothing is
// written.
func (c *DeltaController) Apply(domainID, value string, simulate bool) (AppliedFrequency, error) {
	logger := c.log.WithValues("domain", domainID)

	delta, err := ParseDelta(value)
	if err != nil {
		return AppliedFrequency{}, err
	}

	bounds, err := c.Bounds(domainID)
	if err != nil {
		return AppliedFrequency{}, err
	}

	if delta < 0 || delta > bounds.MaxDelta() {
		return AppliedFrequency{}, &RangeError{DomainID: domainID, Delta: delta, Bounds: bounds}
	}

	applied := AppliedFrequency{
		DomainID:        domainID,
		Delta:           delta,
		EffectiveMaxKHz: bounds.InitialMaxKHz - delta,
	}

	if simulate {
		logger.V(5).Info("simulated max frequency", "delta", delta, "maxFreqKHz", applied.EffectiveMaxKHz)
		return applied, nil
	}

	if err := c.store.WriteMax(domainID, applied.EffectiveMaxKHz); err != nil {
		return AppliedFrequency{}, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	logger.V(5).Info("max frequency set", "delta", delta, "maxFreqKHz", applied.EffectiveMaxKHz)

	return applied, nil
}

// Query recovers the active delta of a domain. present is false when
// tolerateMissing is set and the interface (or one of its attributes) does
// not exist.
func (c *DeltaController) Query(domainID string, tolerateMissing bool) (delta int, present bool, err error) {
	if tolerateMissing && !c.store.RootExists() {
		return 0, false, nil
	}

	maxKHz, ok, err := c.store.ReadBound(domainID, InitialMaxFreqAttr, tolerateMissing)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrBoundsUnavailable, err)
	}
	if !ok {
		return 0, false, nil
	}

	current, ok, err := c.store.ReadBound(domainID, MaxFreqAttr, tolerateMissing)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrBoundsUnavailable, err)
	}
	if !ok {
		return 0, false, nil
	}

	return maxKHz - current, true, nil
}
