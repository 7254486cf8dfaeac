package integrators

import (
	"fmt"
	"iter"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Preview forward-simulates a copy of body for steps iterations of
// semi-implicit Euler and returns every resulting position. The body is taken
// by value and the result is a fresh slice, so the live body is never touched.
// steps == 0 gives an empty slice. A path that lands exactly on the attractor
// with zero softening fails with ErrDegenerate.
func Preview(body physics.Body, attractor *physics.Attractor, gravity physics.Gravity, dt float64, steps int) ([]r2.Vec, error) {
	if err := checkPreview(dt, steps); err != nil {
		return nil, err
	}
	path := make([]r2.Vec, 0, steps)
	s := body.BodyState
	for i := 0; i < steps; i++ {
		next, err := semiImplicit(s, attractor, gravity, dt)
		if err != nil {
			return nil, fmt.Errorf("preview of body %d, step %d: %w", body.ID, i, err)
		}
		s = next
		path = append(path, s.Pos)
	}
	return path, nil
}

// PreviewSeq is the lazy form of Preview. Each iteration restarts from the
// state captured when PreviewSeq was called. A degenerate start is reported
// up front; a path that becomes degenerate later simply ends there.
func PreviewSeq(body physics.Body, attractor *physics.Attractor, gravity physics.Gravity, dt float64, steps int) (iter.Seq[r2.Vec], error) {
	if err := checkPreview(dt, steps); err != nil {
		return nil, err
	}
	start := body.BodyState
	if steps > 0 {
		if _, err := gravity.Accelerate(start.Pos, attractor); err != nil {
			return nil, fmt.Errorf("preview of body %d: %w", body.ID, err)
		}
	}
	return func(yield func(r2.Vec) bool) {
		s := start
		for i := 0; i < steps; i++ {
			next, err := semiImplicit(s, attractor, gravity, dt)
			if err != nil {
				return
			}
			s = next
			if !yield(s.Pos) {
				return
			}
		}
	}, nil
}

func checkPreview(dt float64, steps int) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	if steps < 0 {
		return fmt.Errorf("preview steps must be non-negative, got %d: %w", steps, dynamo.ErrInvalidStep)
	}
	return nil
}

func semiImplicit(s dynamo.BodyState, a *physics.Attractor, g physics.Gravity, dt float64) (dynamo.BodyState, error) {
	acc, err := g.Accelerate(s.Pos, a)
	if err != nil {
		return dynamo.BodyState{}, err
	}
	vel := r2.Add(s.Vel, r2.Scale(dt, acc))
	return dynamo.BodyState{Pos: r2.Add(s.Pos, r2.Scale(dt, vel)), Vel: vel}, nil
}
