package physics

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// DefaultBodyColor is used for bodies created without a colour hint.
	DefaultBodyColor, _ = colorful.Hex("#88F2F2")
	// DefaultAttractorColor is the yellow of the central mass.
	DefaultAttractorColor, _ = colorful.Hex("#FFFF00")
)

// Attractor is the stationary gravitational centre. It has no setters: its
// position and mass are fixed for the lifetime of a run.
type Attractor struct {
	pos    r2.Vec
	mass   float64
	radius float64
	color  colorful.Color
}

func NewAttractor(pos r2.Vec, mass, radius float64) (*Attractor, error) {
	if err := validate("attractor", pos, r2.Vec{}, mass, radius); err != nil {
		return nil, err
	}
	return &Attractor{pos: pos, mass: mass, radius: radius, color: DefaultAttractorColor}, nil
}

// WithColor returns a copy of a with a different colour hint.
func (a *Attractor) WithColor(c colorful.Color) *Attractor {
	cp := *a
	cp.color = c
	return &cp
}

func (a *Attractor) Pos() r2.Vec           { return a.pos }
func (a *Attractor) Mass() float64         { return a.mass }
func (a *Attractor) Radius() float64       { return a.radius }
func (a *Attractor) Color() colorful.Color { return a.color }

// Bounds is the attractor's hit square.
func (a *Attractor) Bounds() r2.Box {
	return square(a.pos, a.radius)
}

// Body is an orbiting body. Its embedded state is advanced by the steppers;
// everything else is fixed once the body is created.
type Body struct {
	dynamo.BodyState

	ID     int
	Name   string
	Mass   float64
	Radius float64 // presentation only
	Color  colorful.Color
}

func NewBody(name string, pos, vel r2.Vec, mass, radius float64) (Body, error) {
	if err := validate(name, pos, vel, mass, radius); err != nil {
		return Body{}, err
	}
	return Body{
		BodyState: dynamo.BodyState{Pos: pos, Vel: vel},
		Name:      name,
		Mass:      mass,
		Radius:    radius,
		Color:     DefaultBodyColor,
	}, nil
}

// CircularVelocity is the velocity of a clockwise (on a y-down screen)
// circular orbit through pos: magnitude sqrt(G*M/|r|) along (r.Y, -r.X)/|r|.
func CircularVelocity(pos r2.Vec, a *Attractor, g float64) (r2.Vec, error) {
	r := r2.Sub(pos, a.pos)
	u, err := dynamo.Normalize(r)
	if err != nil {
		return r2.Vec{}, err
	}
	speed := CircularSpeed(r2.Norm(r), a.mass, g)
	return r2.Vec{X: speed * u.Y, Y: -speed * u.X}, nil
}

// AddCircularVelocity ADDS the circular-orbit velocity to whatever velocity
// the body already has, so a preset velocity acts as a boost on top of the
// circular orbit. Call it once, before the first step.
func (b *Body) AddCircularVelocity(a *Attractor, g float64) error {
	v, err := CircularVelocity(b.Pos, a, g)
	if err != nil {
		return fmt.Errorf("circular velocity for %q: %w", b.Name, err)
	}
	b.Vel = r2.Add(b.Vel, v)
	return nil
}

// Bounds is the body's hit square.
func (b *Body) Bounds() r2.Box {
	return square(b.Pos, b.Radius)
}

func validate(name string, pos, vel r2.Vec, mass, radius float64) error {
	switch {
	case !dynamo.IsFiniteScalar(mass) || mass <= 0:
		return fmt.Errorf("%s: mass %v: %w", name, mass, dynamo.ErrInvalidBody)
	case !dynamo.IsFiniteScalar(radius) || radius < 0:
		return fmt.Errorf("%s: radius %v: %w", name, radius, dynamo.ErrInvalidBody)
	case !dynamo.IsFinite(pos):
		return fmt.Errorf("%s: position %v: %w", name, pos, dynamo.ErrInvalidBody)
	case !dynamo.IsFinite(vel):
		return fmt.Errorf("%s: velocity %v: %w", name, vel, dynamo.ErrInvalidBody)
	}
	return nil
}
