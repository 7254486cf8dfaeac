package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var world = r2.Box{Max: r2.Vec{X: 1280, Y: 720}}

func TestFrameSVG(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PreviewSteps = 20
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	svg := FrameSVG(s.Frame(), world, 640)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if !strings.Contains(svg, `width="640" height="360"`) {
		t.Error("expected height to follow the world aspect")
	}
	want := 1 + len(cfg.Bodies)
	if got := strings.Count(svg, "<circle"); got != want {
		t.Errorf("circles = %d, want %d", got, want)
	}
	if got := strings.Count(svg, "<path"); got != len(cfg.Bodies) {
		t.Errorf("preview paths = %d, want %d", got, len(cfg.Bodies))
	}
	if !strings.Contains(svg, "RUNNING") {
		t.Error("expected mode label")
	}
}

func TestFrameSVGRejectsEmptyWorld(t *testing.T) {
	if svg := FrameSVG(sim.Frame{}, r2.Box{}, 640); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}
}

func TestTracksSVG(t *testing.T) {
	tracks := []Track{
		{ID: 0, Points: []r2.Vec{{X: 100, Y: 100}, {X: 200, Y: 150}, {X: 300, Y: 100}}},
		{ID: 1, Points: []r2.Vec{{X: 10, Y: 10}}},
		{ID: 2, Points: []r2.Vec{{X: 10, Y: 10}, {X: 20, Y: 20}}, Color: "#123456"},
	}
	center := r2.Vec{X: 640, Y: 360}

	svg := TracksSVG(tracks, &center, world, 320)
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("paths = %d, want 2 (single-point track skipped)", got)
	}
	if !strings.Contains(svg, "M100.0,100.0 L200.0,150.0 L300.0,100.0") {
		t.Error("track coordinates not in world space")
	}
	if !strings.Contains(svg, `stroke="#123456"`) {
		t.Error("explicit track colour ignored")
	}
	if !strings.Contains(svg, `cx="640.0" cy="360.0"`) {
		t.Error("missing centre mark")
	}
}

func TestWriteFile(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFile("-", &buf, "<svg/>"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<svg/>" {
		t.Errorf("stdout = %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out.svg")
	if err := WriteFile(path, nil, "<svg/>"); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != "<svg/>" {
		t.Errorf("file = %q", data)
	}
	if err := WriteFile(path, nil, ""); err == nil {
		t.Error("expected error for empty svg")
	}
}
