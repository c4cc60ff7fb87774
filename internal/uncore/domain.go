package uncore

import "strings"

// Attribute file names exposed per domain by the intel_uncore_frequency driver.
const (
	InitialMaxFreqAttr = "initial_max_freq_khz"
	InitialMinFreqAttr = "initial_min_freq_khz"
	MaxFreqAttr        = "max_freq_khz"
)

// DefaultSysfsRoot is where the kernel exposes uncore frequency domains.
const DefaultSysfsRoot = "/sys/devices/system/cpu/intel_uncore_frequency"

// domainBasedPrefix marks entries of the TPMI enumeration scheme.
const domainBasedPrefix = "uncore"

type Scheme int

const (
	// SchemeLegacy is the per package/die enumeration (package_00_die_00).
	SchemeLegacy Scheme = iota
	// SchemeDomainBased is the TPMI enumeration (uncore00, uncore01, ...).
	SchemeDomainBased
)

func (s Scheme) String() string {
	switch s {
	case SchemeLegacy:
		return "legacy"
	case SchemeDomainBased:
		return "domain-based"
	default:
		return "unknown"
	}
}

// Domain is one independently controllable uncore frequency unit.
type Domain struct {
	ID     string
	Scheme Scheme
}

func isDomainBased(name string) bool {
	return strings.HasPrefix(name, domainBasedPrefix)
}

// FrequencyBounds are the hardware reported limits of a domain in kHz.
type FrequencyBounds struct {
	InitialMinKHz int
	InitialMaxKHz int
}

// MaxDelta is the largest delta that keeps the ceiling at or above the floor.
func (b FrequencyBounds) MaxDelta() int {
	return b.InitialMaxKHz - b.InitialMinKHz
}

// AppliedFrequency is the outcome of an accepted delta request.
type AppliedFrequency struct {
	DomainID        string
	Delta           int
	EffectiveMaxKHz int
}
