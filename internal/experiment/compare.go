package experiment

import (
	"context"
	"time"

	"github.com/san-kum/gravsim/internal/integrators"
)

type Comparison struct {
	Integrator  string
	EnergyDrift float64
	Elapsed     time.Duration
	Err         error
}

// Compare runs the same configuration once per named stepper. A stepper that
// is unknown or fails gets its error recorded and the rest still run.
func Compare(ctx context.Context, cfg Config, names []string) []Comparison {
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		row := Comparison{Integrator: name}
		res, err := runWith(ctx, cfg, name)
		if err != nil {
			row.Err = err
		}
		if res != nil {
			row.EnergyDrift = res.Metrics["energy_drift"]
			row.Elapsed = res.Elapsed
		}
		out = append(out, row)
		if ctx.Err() != nil {
			break
		}
	}
	return out
}

func runWith(ctx context.Context, cfg Config, name string) (*Result, error) {
	if _, err := integrators.New(name); err != nil {
		return nil, err
	}
	c := cfg
	c.Sim = cfg.Sim.Clone()
	c.Sim.Integrator = name
	e, err := New(c)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}
