// Package optim searches simulation parameters for the run that minimises a
// metric, e.g. the dt and softening that keep energy drift lowest.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/gravsim/internal/experiment"
)

var ErrNoResult = errors.New("optim: no parameter combination completed")

// Builder turns one parameter combination into a ready experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs every combination and returns the one with the smallest value
// of metricName, along with every trial in visiting order. Failed
// combinations are recorded but never win.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (Trial, []Trial, error) {
	best := Trial{Value: math.Inf(1)}
	var trials []Trial

	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) {
		t := Trial{Params: params}
		exp, err := build(params)
		if err == nil {
			var res *experiment.Result
			res, err = exp.Run(ctx)
			if err == nil {
				v, ok := res.Metrics[metricName]
				if !ok {
					err = fmt.Errorf("optim: run has no metric %q", metricName)
				}
				t.Value = v
			}
		}
		t.Err = err
		trials = append(trials, t)
		if err == nil && t.Value < best.Value {
			best = t
		}
	})
	if err != nil {
		return best, trials, err
	}
	if best.Params == nil {
		return best, trials, ErrNoResult
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(maps.Clone(current))
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, current, visit); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}
