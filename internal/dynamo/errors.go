package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrInvalidConfig indicates an interval, step count or tolerance that
	// cannot be integrated. It is reported before any stepping begins.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrConvergence indicates the root finder of an implicit step did not
	// drive the residual below tolerance within its iteration budget.
	ErrConvergence = errors.New("dynamo: root finder did not converge")

	// ErrNumericOverflow indicates the state diverged to a non-finite value
	// or beyond DivergenceBound.
	ErrNumericOverflow = errors.New("dynamo: state diverged")
)

// StepError wraps an error with the context of the step that failed.
type StepError struct {
	Step       int
	Time       float64
	State      float64
	Residual   float64
	Iterations int
	Wrapped    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f, x=%g): %v", e.Step, e.Time, e.State, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
