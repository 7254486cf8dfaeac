package analysis

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
)

// Divergence estimates the exponential growth rate of the separation between
// body and a copy displaced by perturbation along x. The copy is pulled back
// to the initial separation whenever it drifts past renorm, and the logs of
// those rescalings are averaged over the elapsed time.
//
// Bound orbits around a single attractor are regular, so the result should
// sit near zero; a clearly positive value points at integrator trouble.
func Divergence(
	body physics.Body,
	attractor *physics.Attractor,
	gravity physics.Gravity,
	st integrators.Stepper,
	dt, duration, perturbation float64,
) (float64, error) {
	const renorm = 1.0

	a, b := body, body
	b.Pos.X += perturbation
	d0 := perturbation
	if d0 <= 0 {
		return 0, dynamo.ErrParameterBounds
	}

	t := 0.0
	sumLog := 0.0
	for t < duration {
		if err := st.Step(&a, attractor, gravity, dt); err != nil {
			return 0, err
		}
		if err := st.Step(&b, attractor, gravity, dt); err != nil {
			return 0, err
		}
		t += dt

		sep := math.Hypot(b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y)
		if sep > renorm {
			sumLog += math.Log(sep / d0)
			b.BodyState = a.BodyState.Madd(d0/sep, b.BodyState.Madd(-1, a.BodyState))
		}
	}
	if t == 0 {
		return 0, nil
	}

	sep := math.Hypot(b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y)
	if sep > 0 {
		sumLog += math.Log(sep / d0)
	}
	return sumLog / t, nil
}
