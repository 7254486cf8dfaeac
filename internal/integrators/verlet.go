package integrators

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Leapfrog is the kick-drift-kick form of velocity Verlet. It is second order
// and symplectic, so energy oscillates instead of drifting.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(body *physics.Body, attractor *physics.Attractor, gravity physics.Gravity, dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	halfDt := 0.5 * dt
	x := body.BodyState

	a0, err := gravity.Accelerate(x.Pos, attractor)
	if err != nil {
		return stageErr(body, err)
	}
	vHalf := r2.Add(x.Vel, r2.Scale(halfDt, a0))
	pos := r2.Add(x.Pos, r2.Scale(dt, vHalf))
	a1, err := gravity.Accelerate(pos, attractor)
	if err != nil {
		return stageErr(body, err)
	}
	vel := r2.Add(vHalf, r2.Scale(halfDt, a1))

	return commit(body, dynamo.BodyState{Pos: pos, Vel: vel})
}
