package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Stepper advances one body by dt under a fixed attractor. Implementations
// mutate the body only when the step succeeds.
type Stepper interface {
	Name() string
	Step(body *physics.Body, attractor *physics.Attractor, gravity physics.Gravity, dt float64) error
}

var registry = map[string]func() Stepper{
	"rk4":        func() Stepper { return NewRK4() },
	"euler":      func() Stepper { return NewEuler() },
	"symplectic": func() Stepper { return NewSymplecticEuler() },
	"leapfrog":   func() Stepper { return NewLeapfrog() },
}

// New returns the stepper registered under name.
func New(name string) (Stepper, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q (available: %v): %w", name, Names(), dynamo.ErrUnknownIntegrator)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// derive is the right-hand side of the equations of motion:
// d(pos)/dt = vel, d(vel)/dt = a(pos).
func derive(s dynamo.BodyState, a *physics.Attractor, g physics.Gravity) (dynamo.BodyState, error) {
	acc, err := g.Accelerate(s.Pos, a)
	if err != nil {
		return dynamo.BodyState{}, err
	}
	return dynamo.BodyState{Pos: s.Vel, Vel: acc}, nil
}

func checkDt(dt float64) error {
	if !dynamo.IsFiniteScalar(dt) || dt <= 0 {
		return fmt.Errorf("dt must be positive and finite, got %v: %w", dt, dynamo.ErrInvalidStep)
	}
	return nil
}

func stageErr(body *physics.Body, err error) error {
	return fmt.Errorf("body %d (%s): %w", body.ID, body.Name, err)
}

// commit stores next into the body unless it went non-finite.
func commit(body *physics.Body, next dynamo.BodyState) error {
	if !next.IsValid() {
		return fmt.Errorf("body %d (%s): %w", body.ID, body.Name, dynamo.ErrInvalidState)
	}
	body.BodyState = next
	return nil
}
