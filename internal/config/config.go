package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"gopkg.in/yaml.v3"
)

const (
	DefaultG            = 2.0
	DefaultSoftening    = 1.0
	DefaultIntegrator   = "rk4"
	DefaultMaxBodies    = 4
	DefaultPreviewSteps = 14000
	DefaultFPS          = 60
	DefaultWidth        = 1280.0
	DefaultHeight       = 720.0
	DefaultSunMass      = 10000.0
	DefaultSunRadius    = 30.0
	DefaultProbeMin     = 25.0
	DefaultProbeScale   = 2.0
	DefaultSunProbe     = 25.0
	DefaultSpawnColor   = "#88F2F2"
)

// Config holds every start-of-run constant. None of it changes mid-run.
type Config struct {
	G            float64         `yaml:"g"`
	Softening    float64         `yaml:"softening"`
	Integrator   string          `yaml:"integrator"`
	MaxBodies    int             `yaml:"max_bodies"`
	PreviewSteps int             `yaml:"preview_steps"`
	MaxFrameDt   float64         `yaml:"max_frame_dt"`
	FPS          int             `yaml:"fps"`
	Seed         int64           `yaml:"seed"`
	World        WorldConfig     `yaml:"world"`
	Attractor    AttractorConfig `yaml:"attractor"`
	Bodies       []BodyConfig    `yaml:"bodies"`
	Spawn        SpawnConfig     `yaml:"spawn"`
}

type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type AttractorConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
	Color  string  `yaml:"color"`
}

type BodyConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
	Color  string  `yaml:"color"`
}

// SpawnConfig bounds interactively spawned bodies and sizes the hit probes.
type SpawnConfig struct {
	MassMin        float64 `yaml:"mass_min"`
	MassMax        float64 `yaml:"mass_max"`
	RadiusMin      float64 `yaml:"radius_min"`
	RadiusMax      float64 `yaml:"radius_max"`
	ProbeMin       float64 `yaml:"probe_min"`
	ProbeScale     float64 `yaml:"probe_scale"`
	AttractorProbe float64 `yaml:"attractor_probe"`
	Color          string  `yaml:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		G:            DefaultG,
		Softening:    DefaultSoftening,
		Integrator:   DefaultIntegrator,
		MaxBodies:    DefaultMaxBodies,
		PreviewSteps: DefaultPreviewSteps,
		FPS:          DefaultFPS,
		World:        WorldConfig{Width: DefaultWidth, Height: DefaultHeight},
		Attractor: AttractorConfig{
			X:      DefaultWidth / 2,
			Y:      DefaultHeight / 2,
			Mass:   DefaultSunMass,
			Radius: DefaultSunRadius,
			Color:  "#FFFF00",
		},
		Bodies: []BodyConfig{
			{Name: "earth", X: 790, Y: 360, Mass: 10, Radius: 6, Color: "#0066FF"},
			{Name: "jupiter", X: 940, Y: 360, Mass: 300, Radius: 14, Color: "#FFA500"},
			{Name: "saturn", X: 1090, Y: 360, Mass: 200, Radius: 12, Color: "#D2B48C"},
		},
		Spawn: SpawnConfig{
			MassMin:        50,
			MassMax:        200,
			RadiusMin:      5,
			RadiusMax:      15,
			ProbeMin:       DefaultProbeMin,
			ProbeScale:     DefaultProbeScale,
			AttractorProbe: DefaultSunProbe,
			Color:          DefaultSpawnColor,
		},
	}
}

// Clone returns a deep copy, so presets can be handed out safely.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &cp
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	bound := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format+": %w", append(args, dynamo.ErrParameterBounds)...))
		}
	}

	bound(c.G > 0 && dynamo.IsFiniteScalar(c.G), "g must be positive, got %v", c.G)
	bound(c.Softening >= 0 && dynamo.IsFiniteScalar(c.Softening), "softening must be non-negative, got %v", c.Softening)
	bound(c.MaxBodies >= len(c.Bodies), "max_bodies %d is below the %d initial bodies", c.MaxBodies, len(c.Bodies))
	bound(c.PreviewSteps >= 0, "preview_steps must be non-negative, got %d", c.PreviewSteps)
	bound(c.MaxFrameDt >= 0, "max_frame_dt must be non-negative, got %v", c.MaxFrameDt)
	bound(c.FPS > 0, "fps must be positive, got %d", c.FPS)
	bound(c.World.Width > 0 && c.World.Height > 0, "world must have positive size, got %vx%v", c.World.Width, c.World.Height)
	bound(c.Attractor.Mass > 0, "attractor mass must be positive, got %v", c.Attractor.Mass)
	bound(c.Attractor.Radius >= 0, "attractor radius must be non-negative, got %v", c.Attractor.Radius)
	bound(c.Spawn.MassMin > 0 && c.Spawn.MassMin <= c.Spawn.MassMax, "spawn mass range [%v, %v] is invalid", c.Spawn.MassMin, c.Spawn.MassMax)
	bound(c.Spawn.RadiusMin >= 0 && c.Spawn.RadiusMin <= c.Spawn.RadiusMax, "spawn radius range [%v, %v] is invalid", c.Spawn.RadiusMin, c.Spawn.RadiusMax)
	bound(c.Spawn.ProbeMin >= 0 && c.Spawn.ProbeScale >= 0 && c.Spawn.AttractorProbe >= 0, "spawn probe sizes must be non-negative")

	if _, err := integrators.New(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	for _, hex := range []string{c.Attractor.Color, c.Spawn.Color} {
		if _, err := ParseColor(hex); err != nil {
			errs = append(errs, err)
		}
	}
	for i, b := range c.Bodies {
		bound(b.Mass > 0, "bodies[%d] (%s): mass must be positive, got %v", i, b.Name, b.Mass)
		bound(b.Radius >= 0, "bodies[%d] (%s): radius must be non-negative, got %v", i, b.Name, b.Radius)
		if _, err := ParseColor(b.Color); err != nil {
			errs = append(errs, fmt.Errorf("bodies[%d] (%s): %w", i, b.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ParseColor parses a "#RRGGBB" hint. An empty string means "use the default"
// and yields the zero colour without error.
func ParseColor(hex string) (colorful.Color, error) {
	if hex == "" {
		return colorful.Color{}, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return c, nil
}
