package physics

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestOverlaps(t *testing.T) {
	sun, _ := NewAttractor(r2.Vec{X: 640, Y: 360}, 10000, 30)
	tests := []struct {
		name  string
		probe r2.Box
		want  bool
	}{
		{"centre", Probe(r2.Vec{X: 640, Y: 360}, 25), true},
		{"probe reaches in from top-left", Probe(r2.Vec{X: 600, Y: 320}, 25), true},
		{"far away", Probe(r2.Vec{X: 100, Y: 100}, 25), false},
		{"touching edge", Probe(r2.Vec{X: 670, Y: 360}, 25), false},
		{"just short from the left", Probe(r2.Vec{X: 585, Y: 360}, 25), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.probe, sun.Bounds()); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	box := r2.Box{Min: r2.Vec{X: 10, Y: 10}, Max: r2.Vec{X: 200, Y: 50}}
	if !Contains(box, r2.Vec{X: 10, Y: 50}) {
		t.Error("corner should be contained")
	}
	if Contains(box, r2.Vec{X: 201, Y: 20}) {
		t.Error("point outside reported as contained")
	}
}
