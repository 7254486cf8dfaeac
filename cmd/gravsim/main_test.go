package main

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/storage"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestBodyIDsAndSampleInterval(t *testing.T) {
	rec := &storage.Recording{
		Positions: []storage.PositionRow{
			{Frame: 1, Time: 0.1, ID: 4, Pos: r2.Vec{X: 1}},
			{Frame: 1, Time: 0.1, ID: 1, Pos: r2.Vec{X: 2}},
			{Frame: 3, Time: 0.3, ID: 4, Pos: r2.Vec{X: 3}},
			{Frame: 3, Time: 0.3, ID: 1, Pos: r2.Vec{X: 4}},
		},
	}

	ids := bodyIDs(rec)
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 4 {
		t.Errorf("bodyIDs = %v, want [1 4]", ids)
	}
	if got := sampleInterval(rec); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("sampleInterval = %v, want 0.2", got)
	}
	if got := sampleInterval(&storage.Recording{}); got != 0 {
		t.Errorf("empty sampleInterval = %v, want 0", got)
	}
}
