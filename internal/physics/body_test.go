package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewBodyValidation(t *testing.T) {
	tests := []struct {
		name   string
		pos    r2.Vec
		vel    r2.Vec
		mass   float64
		radius float64
	}{
		{"zero mass", r2.Vec{X: 1}, r2.Vec{}, 0, 5},
		{"negative mass", r2.Vec{X: 1}, r2.Vec{}, -10, 5},
		{"NaN mass", r2.Vec{X: 1}, r2.Vec{}, math.NaN(), 5},
		{"negative radius", r2.Vec{X: 1}, r2.Vec{}, 10, -1},
		{"NaN position", r2.Vec{X: math.NaN()}, r2.Vec{}, 10, 5},
		{"Inf velocity", r2.Vec{X: 1}, r2.Vec{Y: math.Inf(1)}, 10, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBody("probe", tt.pos, tt.vel, tt.mass, tt.radius)
			if !errors.Is(err, dynamo.ErrInvalidBody) {
				t.Errorf("error = %v, want ErrInvalidBody", err)
			}
		})
	}
}

func TestNewAttractorValidation(t *testing.T) {
	if _, err := NewAttractor(r2.Vec{}, 0, 30); !errors.Is(err, dynamo.ErrInvalidBody) {
		t.Errorf("zero-mass attractor: error = %v, want ErrInvalidBody", err)
	}
	a, err := NewAttractor(r2.Vec{X: 640, Y: 360}, 10000, 30)
	if err != nil {
		t.Fatalf("NewAttractor: %v", err)
	}
	if a.Pos() != (r2.Vec{X: 640, Y: 360}) || a.Mass() != 10000 || a.Radius() != 30 {
		t.Errorf("attractor fields not stored: %+v", a)
	}
}

func TestCircularVelocity(t *testing.T) {
	sun, _ := NewAttractor(r2.Vec{}, 10000, 30)
	b, err := NewBody("earth", r2.Vec{X: 150}, r2.Vec{}, 10, 6)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	if err := b.AddCircularVelocity(sun, 2); err != nil {
		t.Fatalf("AddCircularVelocity: %v", err)
	}

	want := math.Sqrt(2 * 10000 / 150.0)
	if math.Abs(r2.Norm(b.Vel)-want) > 1e-12 {
		t.Errorf("|v| = %v, want %v", r2.Norm(b.Vel), want)
	}
	if math.Abs(r2.Dot(b.Vel, b.Pos)) > 1e-9 {
		t.Errorf("velocity %+v is not tangential to %+v", b.Vel, b.Pos)
	}
	// (r.Y, -r.X): a body on +x moves toward -y.
	if b.Vel.Y >= 0 {
		t.Errorf("velocity %+v has wrong orientation", b.Vel)
	}
}

func TestAddCircularVelocityIsAdditive(t *testing.T) {
	sun, _ := NewAttractor(r2.Vec{}, 10000, 30)
	boost := r2.Vec{X: 1.5, Y: 0.25}
	b, _ := NewBody("boosted", r2.Vec{X: 150}, boost, 10, 6)

	circ, err := CircularVelocity(b.Pos, sun, 2)
	if err != nil {
		t.Fatalf("CircularVelocity: %v", err)
	}
	if err := b.AddCircularVelocity(sun, 2); err != nil {
		t.Fatalf("AddCircularVelocity: %v", err)
	}
	want := r2.Add(boost, circ)
	if b.Vel != want {
		t.Errorf("Vel = %+v, want boost+circular %+v", b.Vel, want)
	}

	// A second call stacks again.
	_ = b.AddCircularVelocity(sun, 2)
	if b.Vel != r2.Add(want, circ) {
		t.Errorf("second call: Vel = %+v, want %+v", b.Vel, r2.Add(want, circ))
	}
}

func TestAddCircularVelocityDegenerate(t *testing.T) {
	sun, _ := NewAttractor(r2.Vec{X: 5, Y: 5}, 10000, 30)
	b, _ := NewBody("inside", r2.Vec{X: 5, Y: 5}, r2.Vec{}, 10, 6)
	if err := b.AddCircularVelocity(sun, 2); !errors.Is(err, dynamo.ErrDegenerate) {
		t.Errorf("error = %v, want ErrDegenerate", err)
	}
	if b.Vel != (r2.Vec{}) {
		t.Errorf("velocity changed on failure: %+v", b.Vel)
	}
}

func TestAttractorWithColorCopies(t *testing.T) {
	sun, _ := NewAttractor(r2.Vec{}, 1, 1)
	red, _ := NewAttractor(r2.Vec{}, 1, 1)
	red = red.WithColor(DefaultBodyColor)
	if sun.Color() != DefaultAttractorColor {
		t.Error("WithColor mutated the original attractor")
	}
	if red.Color() != DefaultBodyColor {
		t.Error("WithColor did not apply the colour")
	}
}
