package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// BodyState is the coupled (position, velocity) pair advanced by the steppers.
// It doubles as its own derivative: for a state s, ds/dt = (s.Vel, a(s.Pos)).
type BodyState struct {
	Pos r2.Vec
	Vel r2.Vec
}

func (s BodyState) IsValid() bool {
	return IsFinite(s.Pos) && IsFinite(s.Vel)
}

func (s BodyState) Add(other BodyState) BodyState {
	return BodyState{Pos: r2.Add(s.Pos, other.Pos), Vel: r2.Add(s.Vel, other.Vel)}
}

func (s BodyState) Scale(factor float64) BodyState {
	return BodyState{Pos: r2.Scale(factor, s.Pos), Vel: r2.Scale(factor, s.Vel)}
}

// Madd returns s + factor*d, the stage update used by every stepper.
func (s BodyState) Madd(factor float64, d BodyState) BodyState {
	return BodyState{
		Pos: r2.Vec{X: s.Pos.X + factor*d.Pos.X, Y: s.Pos.Y + factor*d.Pos.Y},
		Vel: r2.Vec{X: s.Vel.X + factor*d.Vel.X, Y: s.Vel.Y + factor*d.Vel.Y},
	}
}

// IsFinite reports whether both components of v are neither NaN nor Inf.
func IsFinite(v r2.Vec) bool {
	return IsFiniteScalar(v.X) && IsFiniteScalar(v.Y)
}

func IsFiniteScalar(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func Length(v r2.Vec) float64 {
	return r2.Norm(v)
}

func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Normalize returns the unit vector along v. A zero vector has no direction
// and yields ErrDegenerate.
func Normalize(v r2.Vec) (r2.Vec, error) {
	l := r2.Norm(v)
	if l == 0 {
		return r2.Vec{}, ErrDegenerate
	}
	return r2.Vec{X: v.X / l, Y: v.Y / l}, nil
}
