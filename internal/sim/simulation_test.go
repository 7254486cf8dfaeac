package sim_test

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const frameDt = 1.0 / 60

func sandbox(capacity int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bodies = nil
	cfg.MaxBodies = capacity
	cfg.PreviewSteps = 50
	return cfg
}

func solar() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PreviewSteps = 50
	return cfg
}

func mustNew(cfg *config.Config, opts ...sim.Option) *sim.Simulation {
	s, err := sim.New(cfg, opts...)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func advance(s *sim.Simulation, frames int) {
	for range frames {
		Expect(s.Advance(frameDt)).To(Succeed())
	}
}

type failingStepper struct {
	failOn int
	calls  int
}

func (f *failingStepper) Name() string { return "failing" }

func (f *failingStepper) Step(b *physics.Body, _ *physics.Attractor, _ physics.Gravity, dt float64) error {
	f.calls++
	if b.ID == f.failOn {
		return dynamo.ErrInvalidState
	}
	b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))
	return nil
}

var _ = Describe("Simulation", func() {
	Describe("construction", func() {
		It("seeds configured bodies onto circular orbits", func() {
			s := mustNew(solar())
			f := s.Frame()

			Expect(f.Mode).To(Equal(sim.Running))
			Expect(f.Bodies).To(HaveLen(3))
			Expect(f.Bodies[0].Name).To(Equal("earth"))
			Expect(f.Bodies[0].ID).To(Equal(0))
			Expect(f.Bodies[2].ID).To(Equal(2))

			want := math.Sqrt(config.DefaultG * config.DefaultSunMass / 150)
			Expect(f.Bodies[0].Vel.X).To(BeNumerically("~", 0, 1e-12))
			Expect(f.Bodies[0].Vel.Y).To(BeNumerically("~", -want, 1e-9))
		})

		It("adds the circular velocity to a configured velocity", func() {
			cfg := sandbox(4)
			cfg.Bodies = []config.BodyConfig{{Name: "kicked", X: 790, Y: 360, VX: 3, VY: 1, Mass: 10, Radius: 6}}
			s := mustNew(cfg)

			want := math.Sqrt(config.DefaultG * config.DefaultSunMass / 150)
			b := s.Bodies()[0]
			Expect(b.Vel.X).To(BeNumerically("~", 3, 1e-12))
			Expect(b.Vel.Y).To(BeNumerically("~", 1-want, 1e-9))
		})

		It("computes previews before the first frame", func() {
			s := mustNew(solar())
			for _, b := range s.Frame().Bodies {
				Expect(b.Preview).To(HaveLen(50))
			}
		})

		It("rejects invalid configuration", func() {
			cfg := solar()
			cfg.G = -1
			_, err := sim.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects a body placed on the attractor", func() {
			cfg := sandbox(4)
			cfg.Bodies = []config.BodyConfig{{Name: "bad", X: cfg.Attractor.X, Y: cfg.Attractor.Y, Mass: 1, Radius: 1}}
			_, err := sim.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrDegenerate))
		})
	})

	Describe("Advance", func() {
		It("moves bodies and the clock while running", func() {
			s := mustNew(solar())
			before := s.Bodies()

			Expect(s.Advance(frameDt)).To(Succeed())

			after := s.Bodies()
			Expect(s.Steps()).To(Equal(1))
			Expect(s.Time()).To(BeNumerically("~", frameDt, 1e-15))
			for i := range after {
				Expect(after[i].Pos).NotTo(Equal(before[i].Pos))
			}
		})

		It("freezes bodies but refreshes previews while paused", func() {
			s := mustNew(solar())
			Expect(s.TogglePause()).To(Equal(sim.Paused))

			Expect(s.Advance(frameDt)).To(Succeed())
			first := s.Frame()
			Expect(s.Advance(2 * frameDt)).To(Succeed())
			second := s.Frame()

			Expect(second.Step).To(Equal(0))
			Expect(second.Time).To(BeZero())
			Expect(second.Mode).To(Equal(sim.Paused))
			for i := range second.Bodies {
				Expect(second.Bodies[i].Pos).To(Equal(first.Bodies[i].Pos))
				Expect(second.Bodies[i].Preview).To(HaveLen(50))
				Expect(second.Bodies[i].Preview[0]).NotTo(Equal(first.Bodies[i].Preview[0]))
			}

			Expect(s.TogglePause()).To(Equal(sim.Running))
			Expect(s.Advance(frameDt)).To(Succeed())
			Expect(s.Steps()).To(Equal(1))
		})

		DescribeTable("rejects non-positive or non-finite dt",
			func(dt float64) {
				s := mustNew(solar())
				before := s.Bodies()
				Expect(s.Advance(dt)).To(MatchError(dynamo.ErrInvalidStep))
				Expect(s.Bodies()).To(Equal(before))
				Expect(s.Steps()).To(Equal(0))
			},
			Entry("zero", 0.0),
			Entry("negative", -frameDt),
			Entry("NaN", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)

		It("clamps long frames to max_frame_dt", func() {
			cfg := solar()
			cfg.MaxFrameDt = 0.05
			clamped := mustNew(cfg)
			reference := mustNew(cfg)

			Expect(clamped.Advance(1.0)).To(Succeed())
			Expect(reference.Advance(0.05)).To(Succeed())

			Expect(clamped.Bodies()).To(Equal(reference.Bodies()))
			Expect(clamped.Time()).To(BeNumerically("~", 0.05, 1e-15))
		})

		It("leaves every body untouched when one of them fails", func() {
			st := &failingStepper{failOn: 1}
			s := mustNew(solar(), sim.WithStepper(st))
			before := s.Bodies()

			err := s.Advance(frameDt)

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.BodyID).To(Equal(1))
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			Expect(s.Bodies()).To(Equal(before))
			Expect(s.Steps()).To(Equal(0))
		})

		It("keeps energy drift small over a few orbits' worth of frames", func() {
			cfg := solar()
			drift := metrics.NewEnergyDrift(cfg.G)
			s := mustNew(cfg, sim.WithMetric(drift))

			advance(s, 600)

			Expect(s.Frame().Metrics).To(HaveKey("energy_drift"))
			Expect(drift.Value()).To(BeNumerically("<", 1e-3))
		})

		It("notifies observers every frame, paused or not", func() {
			var frames []sim.Frame
			s := mustNew(solar(), sim.WithObserver(sim.ObserverFunc(func(f sim.Frame) {
				frames = append(frames, f)
			})))

			advance(s, 2)
			s.TogglePause()
			advance(s, 1)

			Expect(frames).To(HaveLen(3))
			Expect(frames[1].Step).To(Equal(2))
			Expect(frames[2].Mode).To(Equal(sim.Paused))
			Expect(frames[2].Step).To(Equal(2))
		})
	})

	Describe("spawning", func() {
		It("accepts exactly as many bodies as the capacity allows", func() {
			s := mustNew(sandbox(3))
			spots := []r2.Vec{{X: 640, Y: 100}, {X: 640, Y: 600}, {X: 200, Y: 360}}
			for _, p := range spots {
				res, err := s.TrySpawn(p, 100, 10)
				Expect(err).NotTo(HaveOccurred())
				Expect(res).To(Equal(sim.Spawned))
			}

			res, err := s.TrySpawn(r2.Vec{X: 1100, Y: 360}, 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(sim.RejectedCapacity))
			Expect(s.Len()).To(Equal(3))
		})

		It("counts configured bodies against the capacity", func() {
			cfg := solar()
			cfg.MaxBodies = 4
			s := mustNew(cfg)

			res, _ := s.TrySpawn(r2.Vec{X: 640, Y: 100}, 100, 10)
			Expect(res).To(Equal(sim.Spawned))
			res, _ = s.TrySpawn(r2.Vec{X: 640, Y: 600}, 100, 10)
			Expect(res).To(Equal(sim.RejectedCapacity))
		})

		It("rejects positions on the attractor", func() {
			s := mustNew(sandbox(3))
			Expect(s.IsPositionOnAttractor(r2.Vec{X: 635, Y: 355})).To(BeTrue())

			res, err := s.TrySpawn(r2.Vec{X: 635, Y: 355}, 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(sim.RejectedOnAttractor))
			Expect(s.Len()).To(BeZero())
		})

		It("rejects positions on a body", func() {
			cfg := solar()
			cfg.MaxBodies = 10
			s := mustNew(cfg)

			res, err := s.TrySpawn(r2.Vec{X: 785, Y: 355}, 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(sim.RejectedOnBody))
		})

		It("hit-tests bodies where they are now, not where they started", func() {
			s := mustNew(solar())
			start := r2.Vec{X: 790, Y: 360}
			Expect(s.IsPositionOnAnyBody(start)).To(BeTrue())

			advance(s, 120)

			earth := s.Frame().Bodies[0]
			Expect(s.IsPositionOnAnyBody(earth.Pos)).To(BeTrue())
			Expect(s.IsPositionOnAnyBody(start)).To(BeFalse())
		})

		It("rejects positions in reserved regions", func() {
			s := mustNew(sandbox(3))
			s.SetReservedRegions(r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 200, Y: 50}})

			res, err := s.TrySpawn(r2.Vec{X: 100, Y: 20}, 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(sim.RejectedReserved))

			res, _ = s.TrySpawn(r2.Vec{X: 100, Y: 120}, 100, 10)
			Expect(res).To(Equal(sim.Spawned))
		})

		It("reports invalid bodies as errors", func() {
			s := mustNew(sandbox(3))
			res, err := s.TrySpawn(r2.Vec{X: 100, Y: 100}, -5, 10)
			Expect(err).To(MatchError(dynamo.ErrInvalidBody))
			Expect(res.OK()).To(BeFalse())
			Expect(s.Len()).To(BeZero())
		})

		It("gives a spawned body an orbit and a preview straight away", func() {
			s := mustNew(sandbox(3))
			res, err := s.TrySpawn(r2.Vec{X: 640, Y: 160}, 100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.OK()).To(BeTrue())

			b := s.Frame().Bodies[0]
			want := math.Sqrt(config.DefaultG * config.DefaultSunMass / 200)
			// r = (0, -200) so the tangent is (-1, 0).
			Expect(b.Vel.X).To(BeNumerically("~", -want, 1e-9))
			Expect(b.Vel.Y).To(BeNumerically("~", 0, 1e-12))
			Expect(b.Preview).To(HaveLen(50))
			Expect(b.Color).To(Equal(physics.DefaultBodyColor))
		})

		It("draws mass and radius from the spawn ranges", func() {
			cfg := sandbox(3)
			s := mustNew(cfg, sim.WithRand(rand.New(rand.NewSource(7))))
			res, err := s.SpawnAt(r2.Vec{X: 640, Y: 100})
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal(sim.Spawned))

			b := s.Bodies()[0]
			Expect(b.Mass).To(BeNumerically(">=", cfg.Spawn.MassMin))
			Expect(b.Mass).To(BeNumerically("<=", cfg.Spawn.MassMax))
			Expect(b.Radius).To(BeNumerically(">=", cfg.Spawn.RadiusMin))
			Expect(b.Radius).To(BeNumerically("<=", cfg.Spawn.RadiusMax))
		})
	})

	Describe("snapshots", func() {
		It("hands out copies", func() {
			s := mustNew(solar())
			f := s.Frame()
			f.Bodies[0].Pos = r2.Vec{}
			bodies := s.Bodies()
			bodies[1].Mass = 1

			Expect(s.Frame().Bodies[0].Pos).To(Equal(r2.Vec{X: 790, Y: 360}))
			Expect(s.Bodies()[1].Mass).To(Equal(300.0))
		})

		It("does not rewrite a preview already handed out", func() {
			s := mustNew(solar())
			old := s.Frame().Bodies[0].Preview
			kept := append([]r2.Vec(nil), old...)

			advance(s, 3)

			Expect(old).To(Equal(kept))
		})

		It("finds the body under the cursor", func() {
			s := mustNew(solar())
			b, ok := s.BodyNear(r2.Vec{X: 795, Y: 362}, 10)
			Expect(ok).To(BeTrue())
			Expect(b.Name).To(Equal("earth"))

			_, ok = s.BodyNear(r2.Vec{X: 100, Y: 100}, 10)
			Expect(ok).To(BeFalse())
		})

		It("reports energy alongside the bodies", func() {
			s := mustNew(solar())
			f := s.Frame()
			Expect(f.EnergyErr).NotTo(HaveOccurred())
			Expect(f.Energy.Kinetic).To(BeNumerically(">", 0))
			Expect(f.Energy.Potential).To(BeNumerically("<", 0))
			Expect(f.Energy.Total).To(BeNumerically("~", f.Energy.Kinetic+f.Energy.Potential, 1e-9))
		})
	})

	Describe("Remove", func() {
		It("drops a body and never reuses its ID", func() {
			cfg := solar()
			cfg.MaxBodies = 5
			s := mustNew(cfg)

			Expect(s.Remove(1)).To(BeTrue())
			Expect(s.Remove(1)).To(BeFalse())
			Expect(s.Len()).To(Equal(2))

			res, _ := s.TrySpawn(r2.Vec{X: 640, Y: 100}, 100, 10)
			Expect(res).To(Equal(sim.Spawned))
			ids := []int{}
			for _, b := range s.Frame().Bodies {
				ids = append(ids, b.ID)
			}
			Expect(ids).To(Equal([]int{0, 2, 3}))
		})
	})
})
