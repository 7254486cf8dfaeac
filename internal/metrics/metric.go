package metrics

import "github.com/san-kum/gravsim/internal/physics"

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(bodies []physics.Body, a *physics.Attractor, t float64)
	Value() float64
	Reset()
}
