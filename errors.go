package vitals

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-bvp-vitals/internal/filter"
)

// Common errors returned by the estimators.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid vitals configuration")

	// ErrInvalidFilter indicates band-pass parameters that cannot be designed.
	ErrInvalidFilter = filter.ErrInvalidParams

	// ErrComputeFailed indicates a compute cycle failed unexpectedly.
	ErrComputeFailed = errors.New("compute cycle failed")

	// ErrInsufficientData indicates a window without enough structure to
	// measure, such as fewer than two peaks.
	ErrInsufficientData = errors.New("insufficient data in window")

	// ErrImplausible indicates a result outside the physiologically
	// plausible range, which is forced to zero.
	ErrImplausible = errors.New("estimate outside plausible range")
)

// ErrorClass groups errors by how the pipeline treats them.
type ErrorClass int

const (
	// ClassNone is a successful cycle.
	ClassNone ErrorClass = iota

	// ClassConstruction errors are returned from constructors and never
	// occur at compute time.
	ClassConstruction

	// ClassTransient errors happen inside a compute cycle. The result is
	// forced to zero and readiness is still set.
	ClassTransient

	// ClassDegenerate covers inputs without enough signal. They resolve to
	// a defined zero and are never reported as failures.
	ClassDegenerate
)

// String returns the class name used in logs and metrics.
func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassConstruction:
		return "construction"
	case ClassTransient:
		return "transient"
	case ClassDegenerate:
		return "degenerate"
	default:
		return fmt.Sprintf("ErrorClass(%d)", int(c))
	}
}

// Classify maps an error to its class. Unknown errors are transient.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidFilter):
		return ClassConstruction
	case errors.Is(err, ErrInsufficientData), errors.Is(err, ErrImplausible):
		return ClassDegenerate
	default:
		return ClassTransient
	}
}

// ErrorPolicy decides what a consumer sees after a transient failure.
type ErrorPolicy int

const (
	// PolicyMask returns a zero reading with no error attached.
	PolicyMask ErrorPolicy = iota

	// PolicySurface returns the same zero reading with Reading.Err set.
	PolicySurface
)

// String returns the policy name used in configuration files.
func (p ErrorPolicy) String() string {
	switch p {
	case PolicyMask:
		return "mask"
	case PolicySurface:
		return "surface"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// ParseErrorPolicy maps a configuration name to a policy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "mask", "":
		return PolicyMask, nil
	case "surface":
		return PolicySurface, nil
	default:
		return 0, fmt.Errorf("%w: unknown error policy %q", ErrInvalidConfig, s)
	}
}

// recoverCompute converts a panic raised inside a compute cycle into an
// error wrapping ErrComputeFailed.
func recoverCompute(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = fmt.Errorf("%w: %w", ErrComputeFailed, e)
			return
		}
		*err = fmt.Errorf("%w: %v", ErrComputeFailed, r)
	}
}
