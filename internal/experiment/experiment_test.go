package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func solar() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PreviewSteps = 10
	return cfg
}

func TestRunRecordsFrames(t *testing.T) {
	e, err := New(Config{Preset: "solar", Sim: solar(), Dt: 0.05, Duration: 5, SampleEvery: 10, StabilityRadius: 1000})
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Frames != 100 {
		t.Errorf("frames = %d, want 100", res.Frames)
	}
	if len(res.Recording.Energy) != 10 {
		t.Errorf("energy samples = %d, want 10", len(res.Recording.Energy))
	}
	if got := len(res.Recording.Positions); got != 30 {
		t.Errorf("position samples = %d, want 30", got)
	}
	if res.Metrics["stability"] != 1 {
		t.Errorf("stability = %v, want 1", res.Metrics["stability"])
	}
	if drift := res.Metrics["energy_drift"]; drift > 1e-4 {
		t.Errorf("energy_drift = %v, want < 1e-4", drift)
	}

	meta := e.Metadata(res)
	if meta.Preset != "solar" || meta.Integrator != "rk4" || meta.Bodies != 3 || meta.Frames != 100 {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	e, err := New(Config{Sim: solar(), Dt: 0.01, Duration: 100})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res == nil || res.Frames != 0 {
		t.Errorf("expected an empty partial result, got %+v", res)
	}
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero dt", Config{Sim: solar(), Dt: 0, Duration: 1}, dynamo.ErrInvalidStep},
		{"zero duration", Config{Sim: solar(), Dt: 0.1}, dynamo.ErrParameterBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := New(Config{Dt: 0.1, Duration: 1}); err == nil {
		t.Error("expected error without a simulation config")
	}
}

func TestCompare(t *testing.T) {
	cfg := Config{Sim: solar(), Dt: 0.05, Duration: 20}
	rows := Compare(context.Background(), cfg, []string{"rk4", "euler", "bogus"})

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Err != nil || rows[1].Err != nil {
		t.Fatalf("unexpected errors: %v, %v", rows[0].Err, rows[1].Err)
	}
	if rows[0].EnergyDrift >= rows[1].EnergyDrift {
		t.Errorf("rk4 drift %v should beat euler drift %v", rows[0].EnergyDrift, rows[1].EnergyDrift)
	}
	if !errors.Is(rows[2].Err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("bogus err = %v, want ErrUnknownIntegrator", rows[2].Err)
	}
	if cfg.Sim.Integrator != config.DefaultIntegrator {
		t.Error("Compare modified the caller's config")
	}
}

func TestBeforeFrameHook(t *testing.T) {
	cfg := solar()
	cfg.MaxBodies = 5
	var calls int
	e, err := New(Config{Sim: cfg, Dt: 0.1, Duration: 1, BeforeFrame: func(frame int, elapsed float64, s *sim.Simulation) error {
		calls++
		if frame == 5 {
			s.TogglePause()
		}
		return nil
	}})
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if calls != 10 {
		t.Errorf("hook calls = %d, want 10", calls)
	}
	if res.Frames != 5 {
		t.Errorf("running frames = %d, want 5", res.Frames)
	}
}

func TestDriftIgnoresMidRunSpawn(t *testing.T) {
	spawned := false
	e, err := New(Config{
		Sim:         solar(),
		Dt:          1.0 / 60,
		Duration:    2,
		SampleEvery: 1 << 30,
		BeforeFrame: func(frame int, _ float64, s *sim.Simulation) error {
			if frame != 60 {
				return nil
			}
			res, err := s.TrySpawn(r2.Vec{X: 640, Y: 100}, 150, 10)
			spawned = res == sim.Spawned
			return err
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !spawned {
		t.Fatal("spawn was rejected")
	}
	if drift := res.Metrics["energy_drift"]; drift > 1e-6 {
		t.Errorf("energy drift = %v after a spawn, want integrator-level drift", drift)
	}
}
