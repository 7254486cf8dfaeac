package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Gravity holds the constants of the force law.
type Gravity struct {
	G         float64
	Softening float64
}

func (g Gravity) Validate() error {
	if !dynamo.IsFiniteScalar(g.G) || g.G <= 0 {
		return fmt.Errorf("gravitational constant %v: %w", g.G, dynamo.ErrParameterBounds)
	}
	if !dynamo.IsFiniteScalar(g.Softening) || g.Softening < 0 {
		return fmt.Errorf("softening %v: %w", g.Softening, dynamo.ErrParameterBounds)
	}
	return nil
}

// AccelerationOf returns the acceleration a body at pos feels toward a.
func (g Gravity) AccelerationOf(pos r2.Vec, a *Attractor) r2.Vec {
	return Acceleration(pos, a.pos, a.mass, g.G, g.Softening)
}

// Accelerate is AccelerationOf with the one undefined case reported: a body
// exactly on the attractor with zero softening has no direction to fall in.
func (g Gravity) Accelerate(pos r2.Vec, a *Attractor) (r2.Vec, error) {
	r := r2.Sub(pos, a.pos)
	if r2.Norm2(r)+g.Softening*g.Softening == 0 {
		return r2.Vec{}, fmt.Errorf("body at %v on the attractor with zero softening: %w", pos, dynamo.ErrDegenerate)
	}
	return Acceleration(pos, a.pos, a.mass, g.G, g.Softening), nil
}

// Acceleration is the softened gravitational acceleration of a body at bodyPos
// toward a fixed attractor. Non-finite inputs give an undefined result.
func Acceleration(bodyPos, attractorPos r2.Vec, attractorMass, g, softening float64) r2.Vec {
	r := r2.Sub(bodyPos, attractorPos)
	d2 := r2.Norm2(r) + softening*softening
	inv := 1.0 / (d2 * math.Sqrt(d2))
	return r2.Scale(-g*attractorMass*inv, r)
}

// CircularSpeed is the speed of a circular orbit of radius r around mass m.
func CircularSpeed(r, m, g float64) float64 {
	return math.Sqrt(g * m / r)
}

// OrbitalPeriod is the Kepler period 2*pi*sqrt(r^3/(G*M)) of a circular orbit.
func OrbitalPeriod(r, m, g float64) float64 {
	return 2 * math.Pi * math.Sqrt(r*r*r/(g*m))
}
