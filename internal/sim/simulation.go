package sim

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

type Simulation struct {
	cfg       config.Config
	gravity   physics.Gravity
	attractor *physics.Attractor
	stepper   integrators.Stepper

	bodies   []physics.Body
	previews [][]r2.Vec // previews[i] belongs to bodies[i]
	nextID   int

	mode     Mode
	step     int
	t        float64
	lastDt   float64
	reserved []r2.Box

	rng        *rand.Rand
	spawnColor colorful.Color
	metrics    []metrics.Metric
	observers  []Observer
}

type Option func(*Simulation)

// WithStepper overrides the stepper named in the configuration.
func WithStepper(st integrators.Stepper) Option {
	return func(s *Simulation) { s.stepper = st }
}

// WithRand sets the source used by SpawnAt.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

func WithMetric(m metrics.Metric) Option {
	return func(s *Simulation) { s.metrics = append(s.metrics, m) }
}

func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

// New builds the attractor and initial bodies described by cfg and gives each
// body its circular-orbit velocity on top of its configured velocity.
func New(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:     *cfg.Clone(),
		gravity: physics.Gravity{G: cfg.G, Softening: cfg.Softening},
		mode:    Running,
		lastDt:  1.0 / float64(cfg.FPS),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stepper == nil {
		st, err := integrators.New(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		s.stepper = st
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(cfg.Seed))
	}

	attractor, err := physics.NewAttractor(r2.Vec{X: cfg.Attractor.X, Y: cfg.Attractor.Y}, cfg.Attractor.Mass, cfg.Attractor.Radius)
	if err != nil {
		return nil, err
	}
	s.attractor = attractor.WithColor(colorOr(cfg.Attractor.Color, physics.DefaultAttractorColor))
	s.spawnColor = colorOr(cfg.Spawn.Color, physics.DefaultBodyColor)

	for _, bc := range cfg.Bodies {
		b, err := physics.NewBody(bc.Name, r2.Vec{X: bc.X, Y: bc.Y}, r2.Vec{X: bc.VX, Y: bc.VY}, bc.Mass, bc.Radius)
		if err != nil {
			return nil, err
		}
		b.Color = colorOr(bc.Color, physics.DefaultBodyColor)
		if err := b.AddCircularVelocity(s.attractor, s.gravity.G); err != nil {
			return nil, err
		}
		s.add(b)
	}
	if err := s.refreshPreviews(s.lastDt); err != nil {
		return nil, err
	}
	return s, nil
}

// Advance runs one frame. dt is the real elapsed time since the previous
// frame; it is clamped to max_frame_dt when that is configured. Bodies move
// only while Running, and either all of them move or none do. Previews are
// recomputed in both modes.
func (s *Simulation) Advance(dt float64) error {
	if !dynamo.IsFiniteScalar(dt) || dt <= 0 {
		return fmt.Errorf("advance: dt must be positive and finite, got %v: %w", dt, dynamo.ErrInvalidStep)
	}
	if s.cfg.MaxFrameDt > 0 && dt > s.cfg.MaxFrameDt {
		dt = s.cfg.MaxFrameDt
	}

	if s.mode == Running {
		next := slices.Clone(s.bodies)
		for i := range next {
			if err := s.stepper.Step(&next[i], s.attractor, s.gravity, dt); err != nil {
				return &dynamo.SimulationError{Step: s.step, Time: s.t, BodyID: next[i].ID, Wrapped: err}
			}
		}
		s.bodies = next
		s.step++
		s.t += dt
		for _, m := range s.metrics {
			m.Observe(s.bodies, s.attractor, s.t)
		}
	}

	s.lastDt = dt
	if err := s.refreshPreviews(dt); err != nil {
		return err
	}

	if len(s.observers) > 0 {
		f := s.Frame()
		for _, o := range s.observers {
			o.OnFrame(f)
		}
	}
	return nil
}

func (s *Simulation) refreshPreviews(dt float64) error {
	for i := range s.bodies {
		path, err := integrators.Preview(s.bodies[i], s.attractor, s.gravity, dt, s.cfg.PreviewSteps)
		if err != nil {
			return err
		}
		s.previews[i] = path
	}
	return nil
}

func (s *Simulation) TogglePause() Mode {
	if s.mode == Running {
		s.mode = Paused
	} else {
		s.mode = Running
	}
	return s.mode
}

func (s *Simulation) Mode() Mode { return s.mode }

// SetReservedRegions tells the simulation where the input layer's own widgets
// sit. Spawn requests inside any of them are rejected.
func (s *Simulation) SetReservedRegions(regions ...r2.Box) {
	s.reserved = slices.Clone(regions)
}

// TrySpawn places a new body at pos with a circular-orbit velocity. Capacity
// and placement problems are reported through the result, not the error; the
// error is reserved for physically invalid mass or radius.
func (s *Simulation) TrySpawn(pos r2.Vec, mass, radius float64) (SpawnResult, error) {
	switch {
	case len(s.bodies) >= s.cfg.MaxBodies:
		return RejectedCapacity, nil
	case s.IsPositionOnAnyBody(pos):
		return RejectedOnBody, nil
	case s.IsPositionOnAttractor(pos):
		return RejectedOnAttractor, nil
	case s.isReserved(pos):
		return RejectedReserved, nil
	}

	b, err := physics.NewBody(fmt.Sprintf("body-%d", s.nextID), pos, r2.Vec{}, mass, radius)
	if err != nil {
		return RejectedInvalid, err
	}
	b.Color = s.spawnColor
	if err := b.AddCircularVelocity(s.attractor, s.gravity.G); err != nil {
		return RejectedInvalid, err
	}

	path, err := integrators.Preview(b, s.attractor, s.gravity, s.lastDt, s.cfg.PreviewSteps)
	if err != nil {
		return RejectedInvalid, err
	}
	s.add(b)
	s.previews[len(s.previews)-1] = path
	return Spawned, nil
}

// SpawnAt draws mass and radius uniformly from the configured spawn ranges.
func (s *Simulation) SpawnAt(pos r2.Vec) (SpawnResult, error) {
	sp := s.cfg.Spawn
	mass := sp.MassMin + s.rng.Float64()*(sp.MassMax-sp.MassMin)
	radius := sp.RadiusMin + s.rng.Float64()*(sp.RadiusMax-sp.RadiusMin)
	return s.TrySpawn(pos, mass, radius)
}

func (s *Simulation) add(b physics.Body) {
	b.ID = s.nextID
	s.nextID++
	s.bodies = append(s.bodies, b)
	s.previews = append(s.previews, nil)
}

// Remove deletes the body with the given ID. IDs are never reused.
func (s *Simulation) Remove(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.bodies = slices.Delete(s.bodies, i, i+1)
	s.previews = slices.Delete(s.previews, i, i+1)
	return true
}

func (s *Simulation) index(id int) int {
	return slices.IndexFunc(s.bodies, func(b physics.Body) bool { return b.ID == id })
}

// IsPositionOnAnyBody probes pos with a square that grows with each body's
// radius but never shrinks below probe_min.
func (s *Simulation) IsPositionOnAnyBody(pos r2.Vec) bool {
	for i := range s.bodies {
		size := math.Max(s.cfg.Spawn.ProbeMin, s.bodies[i].Radius*s.cfg.Spawn.ProbeScale)
		if physics.Overlaps(physics.Probe(pos, size), s.bodies[i].Bounds()) {
			return true
		}
	}
	return false
}

func (s *Simulation) IsPositionOnAttractor(pos r2.Vec) bool {
	return physics.Overlaps(physics.Probe(pos, s.cfg.Spawn.AttractorProbe), s.attractor.Bounds())
}

func (s *Simulation) isReserved(pos r2.Vec) bool {
	for _, box := range s.reserved {
		if physics.Contains(box, pos) {
			return true
		}
	}
	return false
}

// BodyNear returns the body closest to pos if it lies within the given distance.
func (s *Simulation) BodyNear(pos r2.Vec, within float64) (BodySnapshot, bool) {
	best, bestDist := -1, within
	for i := range s.bodies {
		if d := dynamo.Distance(pos, s.bodies[i].Pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return BodySnapshot{}, false
	}
	return s.snapshot(best), true
}

// Bodies returns a copy of the live bodies.
func (s *Simulation) Bodies() []physics.Body {
	return slices.Clone(s.bodies)
}

// Attractor is immutable and safe to share.
func (s *Simulation) Attractor() *physics.Attractor { return s.attractor }

func (s *Simulation) Gravity() physics.Gravity { return s.gravity }
func (s *Simulation) Stepper() string          { return s.stepper.Name() }
func (s *Simulation) Len() int                 { return len(s.bodies) }
func (s *Simulation) Capacity() int            { return s.cfg.MaxBodies }
func (s *Simulation) Time() float64            { return s.t }
func (s *Simulation) Steps() int               { return s.step }
func (s *Simulation) World() config.WorldConfig {
	return s.cfg.World
}

// Energy measures the current bodies. It fails only if a body sits exactly on
// the attractor.
func (s *Simulation) Energy() (metrics.Snapshot, error) {
	return metrics.Measure(s.bodies, s.attractor, s.gravity.G)
}

func (s *Simulation) Frame() Frame {
	f := Frame{
		Mode: s.mode,
		Step: s.step,
		Time: s.t,
		Attractor: AttractorSnapshot{
			Pos:    s.attractor.Pos(),
			Mass:   s.attractor.Mass(),
			Radius: s.attractor.Radius(),
			Color:  s.attractor.Color(),
		},
		Bodies: make([]BodySnapshot, len(s.bodies)),
	}
	for i := range s.bodies {
		f.Bodies[i] = s.snapshot(i)
	}
	f.Energy, f.EnergyErr = s.Energy()
	if len(s.metrics) > 0 {
		f.Metrics = make(map[string]float64, len(s.metrics))
		for _, m := range s.metrics {
			f.Metrics[m.Name()] = m.Value()
		}
	}
	return f
}

func (s *Simulation) snapshot(i int) BodySnapshot {
	b := &s.bodies[i]
	return BodySnapshot{
		ID:      b.ID,
		Name:    b.Name,
		Pos:     b.Pos,
		Vel:     b.Vel,
		Mass:    b.Mass,
		Radius:  b.Radius,
		Color:   b.Color,
		Preview: s.previews[i],
	}
}

func colorOr(hex string, fallback colorful.Color) colorful.Color {
	c, err := config.ParseColor(hex)
	if err != nil || hex == "" {
		return fallback
	}
	return c
}
