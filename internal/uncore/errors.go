package uncore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a requested delta is not an integer.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBoundsUnavailable is returned when hardware reported bounds or the
	// current ceiling of a domain could not be read.
	ErrBoundsUnavailable = errors.New("frequency bounds unavailable")

	// ErrOutOfRange is returned when a delta would move the ceiling outside
	// [initial_min_freq_khz, initial_max_freq_khz].
	ErrOutOfRange = errors.New("delta out of range")

	// ErrWriteFailure is returned when the new ceiling could not be persisted.
	ErrWriteFailure = errors.New("failed to write max frequency")

	// ErrReadFailure is returned by FrequencyStore when an attribute could not
	// be read or parsed.
	ErrReadFailure = errors.New("failed to read frequency attribute")

	ErrUnknownDomain     = errors.New("unknown uncore domain")
	ErrDomainAssigned    = errors.New("uncore domain already assigned")
	ErrDomainNotAssigned = errors.New("uncore domain not assigned")
	ErrUnknownOption     = errors.New("unknown option")
)

// RangeError carries the permitted bounds of a rejected delta.
type RangeError struct {
	DomainID string
	Delta    int
	Bounds   FrequencyBounds
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("max_freq_khz_delta %d for domain %s is not in range [0 %d] (max_freq_khz range [%d %d])",
		e.Delta, e.DomainID, e.Bounds.MaxDelta(), e.Bounds.InitialMinKHz, e.Bounds.InitialMaxKHz)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
