package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidBody indicates a body or attractor with non-positive mass,
	// negative radius, or non-finite position/velocity.
	ErrInvalidBody = errors.New("dynamo: invalid body (non-positive mass or non-finite state)")

	// ErrDegenerate indicates a zero-length radius vector where a direction
	// is required.
	ErrDegenerate = errors.New("dynamo: degenerate configuration (zero distance to attractor)")

	// ErrInvalidStep indicates a non-positive or non-finite dt, or a negative
	// step count.
	ErrInvalidStep = errors.New("dynamo: invalid stepping parameters")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownIntegrator indicates a stepper name with no registered implementation.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	BodyID  int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) body %d: %v", e.Step, e.Time, e.BodyID, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
