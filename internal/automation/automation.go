// Package automation scripts headless runs: timed scenarios loaded from YAML
// and Monte Carlo batches of perturbed orbits.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

var ErrBadEvent = errors.New("automation: event must do exactly one thing")

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	// Config overrides Preset when present.
	Config *config.Config `yaml:"config"`
	Events []Event        `yaml:"events"`
}

// Event fires once, at the first frame whose wall time reaches At. Paused
// frames count toward wall time.
type Event struct {
	At     float64     `yaml:"at"`
	Spawn  *SpawnEvent `yaml:"spawn,omitempty"`
	Toggle bool        `yaml:"toggle_pause,omitempty"`
	Remove *int        `yaml:"remove,omitempty"`
}

type SpawnEvent struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
}

// Outcome records what an event did.
type Outcome struct {
	At     float64
	Frame  int
	Action string
	Result string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, sc.Validate()
}

func (sc *Scenario) Validate() error {
	var errs []error
	for i, ev := range sc.Events {
		n := 0
		if ev.Spawn != nil {
			n++
		}
		if ev.Toggle {
			n++
		}
		if ev.Remove != nil {
			n++
		}
		if n != 1 {
			errs = append(errs, fmt.Errorf("event %d: %w", i, ErrBadEvent))
		}
		if ev.At < 0 {
			errs = append(errs, fmt.Errorf("event %d: negative time %v", i, ev.At))
		}
	}
	return errors.Join(errs...)
}

func (sc *Scenario) simConfig() (*config.Config, error) {
	if sc.Config != nil {
		return sc.Config.Clone(), nil
	}
	name := sc.Preset
	if name == "" {
		name = "solar"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg, nil
}

// RunScenario executes the scenario's events against one headless run.
func RunScenario(ctx context.Context, sc *Scenario, opts ...sim.Option) (*experiment.Result, []Outcome, error) {
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	cfg, err := sc.simConfig()
	if err != nil {
		return nil, nil, err
	}

	events := append([]Event(nil), sc.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	dt := sc.Dt
	if dt == 0 {
		dt = 1.0 / float64(cfg.FPS)
	}

	var outcomes []Outcome
	next := 0
	hook := func(frame int, elapsed float64, s *sim.Simulation) error {
		for next < len(events) && events[next].At <= elapsed+dt/2 {
			out, err := apply(events[next], s)
			if err != nil {
				return fmt.Errorf("event at %.2fs: %w", events[next].At, err)
			}
			out.Frame = frame
			outcomes = append(outcomes, out)
			next++
		}
		return nil
	}

	exp, err := experiment.New(experiment.Config{
		Preset:      sc.Name,
		Sim:         cfg,
		Dt:          dt,
		Duration:    sc.Duration,
		BeforeFrame: hook,
	}, opts...)
	if err != nil {
		return nil, nil, err
	}
	res, err := exp.Run(ctx)
	return res, outcomes, err
}

func apply(ev Event, s *sim.Simulation) (Outcome, error) {
	out := Outcome{At: ev.At}
	switch {
	case ev.Spawn != nil:
		out.Action = fmt.Sprintf("spawn (%.0f, %.0f)", ev.Spawn.X, ev.Spawn.Y)
		res, err := s.TrySpawn(r2.Vec{X: ev.Spawn.X, Y: ev.Spawn.Y}, ev.Spawn.Mass, ev.Spawn.Radius)
		if err != nil {
			return out, err
		}
		out.Result = res.String()
	case ev.Toggle:
		out.Action = "toggle pause"
		out.Result = s.TogglePause().String()
	case ev.Remove != nil:
		out.Action = fmt.Sprintf("remove %d", *ev.Remove)
		out.Result = "not found"
		if s.Remove(*ev.Remove) {
			out.Result = "removed"
		}
	}
	return out, nil
}

// MonteCarloConfig places one body per trial at a random distance from the
// attractor and adds a random velocity kick on top of its circular orbit.
type MonteCarloConfig struct {
	Base        *config.Config
	Trials      int
	MinDistance float64
	MaxDistance float64
	// Kick is the largest added speed, as a fraction of the circular speed.
	Kick         float64
	EscapeRadius float64
	Dt           float64
	Duration     float64
	Seed         int64
	// Workers bounds concurrent trials; zero means one per CPU.
	Workers int
}

type MonteCarloResult struct {
	Trial       int
	Distance    float64
	Kick        r2.Vec
	Bound       bool
	EnergyDrift float64
	Err         error
}

// RunMonteCarlo draws every trial from the seed up front, then runs them in
// parallel on up to Workers goroutines. Results are in trial order.
func RunMonteCarlo(ctx context.Context, mc MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.Base == nil || mc.Trials <= 0 || mc.MaxDistance < mc.MinDistance || mc.MinDistance <= 0 {
		return nil, fmt.Errorf("automation: invalid monte carlo config")
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, mc.Trials)
	cfgs := make([]*config.Config, mc.Trials)
	for trial := range results {
		dist := mc.MinDistance + rng.Float64()*(mc.MaxDistance-mc.MinDistance)
		angle := rng.Float64() * 2 * math.Pi
		v := math.Sqrt(mc.Base.G * mc.Base.Attractor.Mass / dist)
		kick := r2.Vec{X: (rng.Float64()*2 - 1) * mc.Kick * v, Y: (rng.Float64()*2 - 1) * mc.Kick * v}

		cfg := mc.Base.Clone()
		cfg.Bodies = []config.BodyConfig{{
			Name:   fmt.Sprintf("trial-%d", trial),
			X:      cfg.Attractor.X + dist*math.Cos(angle),
			Y:      cfg.Attractor.Y + dist*math.Sin(angle),
			VX:     kick.X,
			VY:     kick.Y,
			Mass:   10,
			Radius: 5,
		}}
		cfg.MaxBodies = max(cfg.MaxBodies, 1)
		cfg.PreviewSteps = 0

		cfgs[trial] = cfg
		results[trial] = MonteCarloResult{Trial: trial, Distance: dist, Kick: kick}
	}

	workers := mc.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			row := &results[idx]
			if err := ctx.Err(); err != nil {
				row.Err = err
				return
			}
			exp, err := experiment.New(experiment.Config{
				Sim:             cfgs[idx],
				Dt:              mc.Dt,
				Duration:        mc.Duration,
				SampleEvery:     math.MaxInt32,
				StabilityRadius: mc.EscapeRadius,
			})
			if err != nil {
				row.Err = err
				return
			}
			res, err := exp.Run(ctx)
			row.Err = err
			if res != nil {
				row.Bound = res.Metrics["stability"] == 1
				row.EnergyDrift = res.Metrics["energy_drift"]
			}
		}(i)
	}
	wg.Wait()

	return results, ctx.Err()
}

// MonteCarloStats counts bound and escaped trials; failed trials count as neither.
func MonteCarloStats(results []MonteCarloResult) (bound, escaped int) {
	for _, r := range results {
		switch {
		case r.Err != nil:
		case r.Bound:
			bound++
		default:
			escaped++
		}
	}
	return
}
