package integrators

import (
	"github.com/san-kum/gravsim/internal/physics"
)

// RK4 is the classical fourth-order Runge-Kutta stepper. All four stages see
// the same attractor; dt is used as given, without clamping.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(body *physics.Body, attractor *physics.Attractor, gravity physics.Gravity, dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	x := body.BodyState

	k1, err := derive(x, attractor, gravity)
	if err != nil {
		return stageErr(body, err)
	}
	k2, err := derive(x.Madd(dt*0.5, k1), attractor, gravity)
	if err != nil {
		return stageErr(body, err)
	}
	k3, err := derive(x.Madd(dt*0.5, k2), attractor, gravity)
	if err != nil {
		return stageErr(body, err)
	}
	k4, err := derive(x.Madd(dt, k3), attractor, gravity)
	if err != nil {
		return stageErr(body, err)
	}

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return commit(body, x.Madd(dt/6.0, sum))
}
