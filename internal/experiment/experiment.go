// Package experiment runs a simulation headless for a fixed duration and
// collects what a stored run needs.
package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

type Config struct {
	Preset string
	Sim    *config.Config
	// Dt is the fixed frame time fed to Advance.
	Dt       float64
	Duration float64
	// SampleEvery keeps every Nth frame in the recording.
	SampleEvery int
	// StabilityRadius, if positive, adds a metric for the fraction of
	// frames in which every body stays within that distance.
	StabilityRadius float64
	// BeforeFrame, if set, runs before every Advance with the frame index
	// and the wall time fed so far. Returning an error stops the run.
	BeforeFrame func(frame int, elapsed float64, s *sim.Simulation) error
}

type Result struct {
	Frames    int
	Time      float64
	Elapsed   time.Duration
	Final     sim.Frame
	Recording *storage.Recording
	Metrics   map[string]float64
}

type Experiment struct {
	cfg      Config
	sim      *sim.Simulation
	recorder *storage.Recorder
	metrics  []metrics.Metric
}

func New(cfg Config, opts ...sim.Option) (*Experiment, error) {
	if cfg.Sim == nil {
		return nil, fmt.Errorf("experiment: no simulation config")
	}
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return nil, fmt.Errorf("experiment: dt %v: %w", cfg.Dt, dynamo.ErrInvalidStep)
	}
	if !(cfg.Duration > 0) {
		return nil, fmt.Errorf("experiment: duration must be positive, got %v: %w", cfg.Duration, dynamo.ErrParameterBounds)
	}

	e := &Experiment{
		cfg:      cfg,
		recorder: storage.NewRecorder(cfg.SampleEvery),
		metrics:  []metrics.Metric{metrics.NewEnergyDrift(cfg.Sim.G)},
	}
	if cfg.StabilityRadius > 0 {
		e.metrics = append(e.metrics, metrics.NewStability(cfg.StabilityRadius))
	}

	all := []sim.Option{sim.WithObserver(e.recorder)}
	for _, m := range e.metrics {
		all = append(all, sim.WithMetric(m))
	}
	s, err := sim.New(cfg.Sim, append(all, opts...)...)
	if err != nil {
		return nil, err
	}
	e.sim = s
	return e, nil
}

// Simulation returns the underlying simulation for adding bodies before Run.
func (e *Experiment) Simulation() *sim.Simulation {
	return e.sim
}

// Run advances the simulation until Duration has elapsed or ctx is done.
// A cancelled run still returns what it recorded along with ctx.Err().
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	frames := int(math.Ceil(e.cfg.Duration/e.cfg.Dt - 1e-9))
	start := time.Now()

	var runErr error
	for i := 0; i < frames; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}
		}
		if e.cfg.BeforeFrame != nil {
			if err := e.cfg.BeforeFrame(i, float64(i)*e.cfg.Dt, e.sim); err != nil {
				runErr = err
				break
			}
		}
		if err := e.sim.Advance(e.cfg.Dt); err != nil {
			runErr = err
			break
		}
	}

	res := &Result{
		Frames:    e.sim.Steps(),
		Time:      e.sim.Time(),
		Elapsed:   time.Since(start),
		Final:     e.sim.Frame(),
		Recording: e.recorder.Recording(),
		Metrics:   make(map[string]float64, len(e.metrics)),
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, runErr
}

// Metadata describes the run for storage. ID and timestamp are set on save.
func (e *Experiment) Metadata(res *Result) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:     e.cfg.Preset,
		Seed:       e.cfg.Sim.Seed,
		Dt:         e.cfg.Dt,
		Duration:   res.Time,
		Frames:     res.Frames,
		Integrator: e.sim.Stepper(),
		Bodies:     len(res.Final.Bodies),
		Metrics:    res.Metrics,
		Config:     e.cfg.Sim,
	}
}
