package integrators

import (
	"github.com/san-kum/gravsim/internal/physics"
)

// Euler is the explicit forward Euler method. It gains energy on every orbit
// and exists as a baseline to compare the other steppers against.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(body *physics.Body, attractor *physics.Attractor, gravity physics.Gravity, dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	x := body.BodyState
	d, err := derive(x, attractor, gravity)
	if err != nil {
		return stageErr(body, err)
	}
	return commit(body, x.Madd(dt, d))
}

// SymplecticEuler is semi-implicit Euler: velocity first, then position with
// the updated velocity. It is the method behind Preview.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return "symplectic" }

func (s *SymplecticEuler) Step(body *physics.Body, attractor *physics.Attractor, gravity physics.Gravity, dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	next, err := semiImplicit(body.BodyState, attractor, gravity, dt)
	if err != nil {
		return stageErr(body, err)
	}
	return commit(body, next)
}
