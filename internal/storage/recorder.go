package storage

import (
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

type EnergyRow struct {
	Frame int     `json:"frame"`
	Time  float64 `json:"time"`
	metrics.Snapshot
}

type PositionRow struct {
	Frame int     `json:"frame"`
	Time  float64 `json:"time"`
	ID    int     `json:"id"`
	Pos   r2.Vec  `json:"pos"`
}

// Recording is the sampled history of a run.
type Recording struct {
	Energy    []EnergyRow   `json:"energy"`
	Positions []PositionRow `json:"positions"`
}

// Track returns the recorded positions of one body in frame order.
func (r *Recording) Track(id int) []r2.Vec {
	var out []r2.Vec
	for _, row := range r.Positions {
		if row.ID == id {
			out = append(out, row.Pos)
		}
	}
	return out
}

// Recorder is a sim.Observer that keeps every Nth running frame. Paused
// frames are skipped since nothing moved.
type Recorder struct {
	every    int
	frames   int
	lastStep int
	rec      Recording
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every, lastStep: -1}
}

func (r *Recorder) OnFrame(f sim.Frame) {
	if f.Mode == sim.Paused || f.Step == r.lastStep {
		return
	}
	r.lastStep = f.Step
	r.frames++
	if (r.frames-1)%r.every != 0 {
		return
	}

	if f.EnergyErr == nil {
		r.rec.Energy = append(r.rec.Energy, EnergyRow{Frame: f.Step, Time: f.Time, Snapshot: f.Energy})
	}
	for _, b := range f.Bodies {
		r.rec.Positions = append(r.rec.Positions, PositionRow{Frame: f.Step, Time: f.Time, ID: b.ID, Pos: b.Pos})
	}
}

func (r *Recorder) Recording() *Recording { return &r.rec }
