package config

import "sort"

var presets = map[string]*Config{
	"solar": DefaultConfig(),
	"single": func() *Config {
		c := DefaultConfig()
		c.Bodies = []BodyConfig{
			{Name: "earth", X: c.Attractor.X + 150, Y: c.Attractor.Y, Mass: 10, Radius: 6, Color: "#0066FF"},
		}
		return c
	}(),
	"boosted": func() *Config {
		c := DefaultConfig()
		c.Bodies = []BodyConfig{
			{Name: "comet", X: c.Attractor.X + 200, Y: c.Attractor.Y, VY: -4, Mass: 5, Radius: 4, Color: "#E0E0FF"},
			{Name: "jupiter", X: 940, Y: 360, Mass: 300, Radius: 14, Color: "#FFA500"},
		}
		return c
	}(),
	"crowded": func() *Config {
		c := DefaultConfig()
		c.MaxBodies = 8
		c.PreviewSteps = 4000
		c.Bodies = append(c.Bodies,
			BodyConfig{Name: "mercury", X: 700, Y: 360, Mass: 5, Radius: 4, Color: "#B0B0B0"},
			BodyConfig{Name: "mars", X: 640, Y: 160, Mass: 8, Radius: 5, Color: "#FF4500"},
		)
		return c
	}(),
	"sandbox": func() *Config {
		c := DefaultConfig()
		c.Bodies = nil
		c.MaxBodies = 6
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
