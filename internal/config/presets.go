package config

import "sort"

// Presets tweak the defaults. Apply copies them onto a fresh DefaultConfig.
var Presets = map[string]func(*Config){
	"musical": func(c *Config) {},
	"damped": func(c *Config) {
		c.Physics.Damping = 0.9
	},
	"drop": func(c *Config) {
		c.Ball = BallConfig{X: 0, Y: 200, VX: 0, VY: 0}
		c.Physics.Damping = 0.8
	},
	"orbit": func(c *Config) {
		c.Physics.Gravity = 0
		c.Ball = BallConfig{X: 0, Y: 0, VX: 450, VY: 260}
	},
	"pentatonic": func(c *Config) {
		c.Sound.Sectors = 5
		c.Sound.Backend = "synth"
		c.Sound.Notes = []string{"C5", "D5", "E5", "G5", "A5"}
	},
	"verlet": func(c *Config) {
		c.Physics.Integrator = "verlet"
	},
	"chimes": func(c *Config) {
		c.Sound.Sectors = 12
		c.Sound.Backend = "synth"
		c.Sound.Notes = []string{"C5", "C#5", "D5", "D#5", "E5", "F5", "F#5", "G5", "G#5", "A5", "A#5", "B5"}
		c.Frame.ShowSectors = true
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
