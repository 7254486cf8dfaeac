package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Snapshot is the mechanical energy of the orbiting bodies at one instant.
type Snapshot struct {
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

// Kinetic is the sum of 1/2*m*|v|^2 over bodies.
func Kinetic(bodies []physics.Body) float64 {
	ke := 0.0
	for i := range bodies {
		ke += 0.5 * bodies[i].Mass * r2.Norm2(bodies[i].Vel)
	}
	return ke
}

// Potential is the sum of -G*M*m/|r| over bodies. It is deliberately
// unsoftened even though the force is softened, so it only approximates the
// quantity the dynamics conserve. A body exactly on the attractor yields
// ErrDegenerate.
func Potential(bodies []physics.Body, a *physics.Attractor, g float64) (float64, error) {
	pe := 0.0
	for i := range bodies {
		r := dynamo.Distance(bodies[i].Pos, a.Pos())
		if r == 0 {
			return 0, fmt.Errorf("potential of body %d (%s): %w", bodies[i].ID, bodies[i].Name, dynamo.ErrDegenerate)
		}
		pe -= g * a.Mass() * bodies[i].Mass / r
	}
	return pe, nil
}

func Total(bodies []physics.Body, a *physics.Attractor, g float64) (float64, error) {
	s, err := Measure(bodies, a, g)
	return s.Total, err
}

func Measure(bodies []physics.Body, a *physics.Attractor, g float64) (Snapshot, error) {
	pe, err := Potential(bodies, a, g)
	if err != nil {
		return Snapshot{}, err
	}
	ke := Kinetic(bodies)
	return Snapshot{Kinetic: ke, Potential: pe, Total: ke + pe}, nil
}

// AngularMomentum is the total angular momentum about the attractor.
func AngularMomentum(bodies []physics.Body, a *physics.Attractor) float64 {
	l := 0.0
	for i := range bodies {
		l += bodies[i].Mass * r2.Cross(r2.Sub(bodies[i].Pos, a.Pos()), bodies[i].Vel)
	}
	return l
}

// EnergyDrift records the largest relative departure of total energy from its
// baseline. The baseline is re-taken whenever the set of body IDs changes, so
// a spawn or removal is not counted as drift.
type EnergyDrift struct {
	name          string
	g             float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	ids           []int
}

func NewEnergyDrift(g float64) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		g:    g,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []physics.Body, a *physics.Attractor, t float64) {
	energy, err := Total(bodies, a, e.g)
	if err != nil {
		return
	}

	if e.samples == 0 || !e.sameBodies(bodies) {
		e.initialEnergy = energy
		e.ids = e.ids[:0]
		for i := range bodies {
			e.ids = append(e.ids, bodies[i].ID)
		}
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) sameBodies(bodies []physics.Body) bool {
	if len(bodies) != len(e.ids) {
		return false
	}
	for i := range bodies {
		if bodies[i].ID != e.ids[i] {
			return false
		}
	}
	return true
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the relative drift of the latest observation.
func (e *EnergyDrift) Current() float64 {
	if e.samples == 0 || e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
	e.ids = e.ids[:0]
}
