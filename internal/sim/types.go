package sim

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Mode is the pause state of a simulation.
type Mode int

const (
	Running Mode = iota
	Paused
)

func (m Mode) String() string {
	if m == Paused {
		return "PAUSED"
	}
	return "RUNNING"
}

// SpawnResult is the outcome of a spawn request. Only Spawned adds a body.
type SpawnResult int

const (
	Spawned SpawnResult = iota
	RejectedCapacity
	RejectedOnBody
	RejectedOnAttractor
	RejectedReserved
	RejectedInvalid
)

func (r SpawnResult) OK() bool { return r == Spawned }

func (r SpawnResult) String() string {
	switch r {
	case Spawned:
		return "spawned"
	case RejectedCapacity:
		return "rejected: body limit reached"
	case RejectedOnBody:
		return "rejected: position is on a body"
	case RejectedOnAttractor:
		return "rejected: position is on the attractor"
	case RejectedReserved:
		return "rejected: position is in a reserved region"
	case RejectedInvalid:
		return "rejected: invalid body"
	}
	return "unknown"
}

type AttractorSnapshot struct {
	Pos    r2.Vec
	Mass   float64
	Radius float64
	Color  colorful.Color
}

// BodySnapshot is a read-only copy of one body plus its current preview.
// Preview is replaced, never modified, on the next frame.
type BodySnapshot struct {
	ID      int
	Name    string
	Pos     r2.Vec
	Vel     r2.Vec
	Mass    float64
	Radius  float64
	Color   colorful.Color
	Preview []r2.Vec
}

// Frame is everything a renderer needs for one frame.
type Frame struct {
	Mode      Mode
	Step      int
	Time      float64
	Attractor AttractorSnapshot
	Bodies    []BodySnapshot
	Energy    metrics.Snapshot
	EnergyErr error
	Metrics   map[string]float64
}

// Observer is notified with a fresh Frame after every Advance.
type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }
