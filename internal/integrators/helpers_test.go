package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	sunMass = 10000.0
	orbitR  = 150.0
)

// circularSetup is the attractor-plus-one-body system used across the tests:
// attractor at the origin, body on +x with a circular-orbit velocity.
func circularSetup(t testing.TB, softening float64) (*physics.Attractor, physics.Gravity, physics.Body) {
	t.Helper()
	sun, err := physics.NewAttractor(r2.Vec{}, sunMass, 30)
	if err != nil {
		t.Fatalf("NewAttractor: %v", err)
	}
	gravity := physics.Gravity{G: 2.0, Softening: softening}
	body, err := physics.NewBody("earth", r2.Vec{X: orbitR}, r2.Vec{}, 10, 6)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	if err := body.AddCircularVelocity(sun, gravity.G); err != nil {
		t.Fatalf("AddCircularVelocity: %v", err)
	}
	return sun, gravity, body
}

// specificEnergy is energy per unit mass using the same softened potential
// the force derives from, so it is the quantity the dynamics conserve.
func specificEnergy(b physics.Body, a *physics.Attractor, g physics.Gravity) float64 {
	r := r2.Norm(r2.Sub(b.Pos, a.Pos()))
	return 0.5*r2.Norm2(b.Vel) - g.G*a.Mass()/math.Sqrt(r*r+g.Softening*g.Softening)
}
