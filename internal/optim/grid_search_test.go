package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
)

func builder(params map[string]float64) (*experiment.Experiment, error) {
	cfg := config.GetPreset("single")
	cfg.PreviewSteps = 0
	cfg.Softening = params["softening"]
	return experiment.New(experiment.Config{
		Sim:         cfg,
		Dt:          params["dt"],
		Duration:    2,
		SampleEvery: 1 << 30,
	})
}

func TestGridSearchFindsSmallestDrift(t *testing.T) {
	g, err := NewGridSearch([]string{"dt", "softening"}, [][]float64{{1, 0.02}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}

	best, trials, err := g.Search(context.Background(), builder, "energy_drift")
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 4 {
		t.Fatalf("trials = %d, want 4", len(trials))
	}
	if best.Params["dt"] != 0.02 {
		t.Errorf("best dt = %v, want 0.02", best.Params["dt"])
	}
	for _, tr := range trials {
		if tr.Err == nil && tr.Value < best.Value {
			t.Errorf("trial %v beats best %v", tr.Params, best.Params)
		}
	}
	if trials[0].Params["dt"] != 1 || trials[0].Params["softening"] != 0 {
		t.Errorf("first trial = %v, want dt=1 softening=0", trials[0].Params)
	}
}

func TestGridSearchRecordsFailures(t *testing.T) {
	g, _ := NewGridSearch([]string{"dt"}, [][]float64{{-1, 0.05}})

	best, trials, err := g.Search(context.Background(), builder, "energy_drift")
	if err != nil {
		t.Fatal(err)
	}
	if trials[0].Err == nil {
		t.Error("negative dt should fail")
	}
	if best.Params["dt"] != 0.05 {
		t.Errorf("best dt = %v, want 0.05", best.Params["dt"])
	}
}

func TestGridSearchNoResult(t *testing.T) {
	g, _ := NewGridSearch([]string{"dt"}, [][]float64{{0.05}})
	_, _, err := g.Search(context.Background(), builder, "missing")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	g, _ := NewGridSearch([]string{"dt"}, [][]float64{{0.05, 0.1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, trials, err := g.Search(ctx, builder, "energy_drift")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(trials) != 0 {
		t.Errorf("trials = %d, want 0", len(trials))
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	if _, err := NewGridSearch([]string{"dt"}, nil); err == nil {
		t.Error("expected mismatch error")
	}
	if _, err := NewGridSearch([]string{"dt"}, [][]float64{{}}); err == nil {
		t.Error("expected empty range error")
	}
}
