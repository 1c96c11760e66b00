package domain

import (
	"errors"
	"fmt"
)

// Validation kinds returned by NewRoutingProblem, wrapped in a *ValidationError.
var (
	ErrShapeMismatch               = errors.New("distance matrix shape mismatch")
	ErrNegativeOrNonFiniteDistance = errors.New("negative or non-finite distance")
	ErrVehicleCountOutOfRange      = errors.New("vehicle count out of range")
	ErrDepotIndexOutOfRange        = errors.New("depot index out of range")
	ErrDuplicateStopID             = errors.New("duplicate or empty stop id")
)

// Solve kinds, wrapped in a *SolveError.
var (
	ErrNoFeasibleArc = errors.New("no feasible arc")
	ErrEmptyProblem  = errors.New("empty problem")
)

// ValidationError reports malformed input to NewRoutingProblem.
// Kind is one of the Err* validation sentinels; errors.Is matches against it.
type ValidationError struct {
	Kind   error
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate routing problem: %v: %s", e.Kind, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// SolveError reports a routing problem that could not be turned into a Solution.
type SolveError struct {
	Kind   error
	Detail string
}

func (e *SolveError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("solve: %v", e.Kind)
	}
	return fmt.Sprintf("solve: %v: %s", e.Kind, e.Detail)
}

func (e *SolveError) Unwrap() error { return e.Kind }

func validationErrorf(kind error, format string, args ...any) error {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ErrorKind maps an error to a stable label for API bodies and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, ErrNegativeOrNonFiniteDistance):
		return "negative_or_non_finite_distance"
	case errors.Is(err, ErrVehicleCountOutOfRange):
		return "vehicle_count_out_of_range"
	case errors.Is(err, ErrDepotIndexOutOfRange):
		return "depot_index_out_of_range"
	case errors.Is(err, ErrDuplicateStopID):
		return "duplicate_stop_id"
	case errors.Is(err, ErrNoFeasibleArc):
		return "no_feasible_arc"
	case errors.Is(err, ErrEmptyProblem):
		return "empty_problem"
	default:
		return "internal"
	}
}

// IsValidation reports whether err originated from routing problem validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
