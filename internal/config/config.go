package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chime/internal/arena"
)

const (
	DefaultWindow       = 800
	DefaultOuterRadius  = 350.0
	DefaultBallRadius   = 20.0
	DefaultGravity      = 510.0
	DefaultDamping      = 1.0
	DefaultSectors      = 8
	DefaultVelocity     = 700.0
	DefaultMaxDt        = 0.05
	DefaultFPS          = 60
	DefaultRunDt        = 0.016
	DefaultRunDuration  = 30.0
	DefaultArenaSegment = 360
	DefaultBallSegment  = 36
	DefaultSoundDir     = "./xylophone"
	DefaultSoundPrefix  = "xylophone-"
)

var DefaultSoundFiles = []string{"a.wav", "b.wav", "c.wav", "c2.wav", "d1.wav", "e1.wav", "f.wav", "g.wav"}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Arena   ArenaConfig   `yaml:"arena"`
	Physics PhysicsConfig `yaml:"physics"`
	Ball    BallConfig    `yaml:"ball"`
	Sound   SoundConfig   `yaml:"sound"`
	Frame   FrameConfig   `yaml:"frame"`
	Run     RunConfig     `yaml:"run"`
}

type ArenaConfig struct {
	OuterRadius float64 `yaml:"outer_radius"`
	BallRadius  float64 `yaml:"ball_radius"`
}

type PhysicsConfig struct {
	Gravity    float64 `yaml:"gravity"`
	Damping    float64 `yaml:"damping"`
	Integrator string  `yaml:"integrator"`
	MaxDt      float64 `yaml:"max_dt"`
}

// BallConfig is the starting state relative to the arena center, y-up.
type BallConfig struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	VX float64 `yaml:"vx"`
	VY float64 `yaml:"vy"`
}

type SoundConfig struct {
	Sectors   int      `yaml:"sectors"`
	Backend   string   `yaml:"backend"`
	Dir       string   `yaml:"dir"`
	Prefix    string   `yaml:"prefix"`
	Files     []string `yaml:"files"`
	Notes     []string `yaml:"notes,omitempty"`
	Volume    float64  `yaml:"volume"`
	MinImpact float64  `yaml:"min_impact"`
}

type FrameConfig struct {
	FPS           int  `yaml:"fps"`
	Window        int  `yaml:"window"`
	ArenaSegments int  `yaml:"arena_segments"`
	BallSegments  int  `yaml:"ball_segments"`
	ShowSectors   bool `yaml:"show_sectors"`
}

type RunConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
}

func DefaultConfig() *Config {
	files := make([]string, len(DefaultSoundFiles))
	copy(files, DefaultSoundFiles)
	return &Config{
		Arena: ArenaConfig{
			OuterRadius: DefaultOuterRadius,
			BallRadius:  DefaultBallRadius,
		},
		Physics: PhysicsConfig{
			Gravity:    DefaultGravity,
			Damping:    DefaultDamping,
			Integrator: "euler",
			MaxDt:      DefaultMaxDt,
		},
		Ball: BallConfig{
			VX: DefaultVelocity,
			VY: DefaultVelocity,
		},
		Sound: SoundConfig{
			Sectors: DefaultSectors,
			Backend: "wav",
			Dir:     DefaultSoundDir,
			Prefix:  DefaultSoundPrefix,
			Files:   files,
		},
		Frame: FrameConfig{
			FPS:           DefaultFPS,
			Window:        DefaultWindow,
			ArenaSegments: DefaultArenaSegment,
			BallSegments:  DefaultBallSegment,
		},
		Run: RunConfig{
			Dt:       DefaultRunDt,
			Duration: DefaultRunDuration,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg; keys absent from the file
// keep their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := arena.NewArena(arena.Vec2{}, c.Arena.OuterRadius, c.Arena.BallRadius); err != nil {
		return fmt.Errorf("%w: arena: %w", ErrInvalid, err)
	}
	params := arena.Params{Gravity: c.Physics.Gravity, Damping: c.Physics.Damping}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: physics: %w", ErrInvalid, err)
	}
	if _, err := arena.GetIntegrator(c.Physics.Integrator); err != nil {
		return fmt.Errorf("%w: physics: %w", ErrInvalid, err)
	}
	if !positive(c.Physics.MaxDt) {
		return fmt.Errorf("%w: physics.max_dt must be positive and finite, got %g", ErrInvalid, c.Physics.MaxDt)
	}
	if c.Sound.Sectors < 1 {
		return fmt.Errorf("%w: sound: %w", ErrInvalid, arena.ErrSectors)
	}
	switch c.Sound.Backend {
	case "wav", "synth", "none":
	default:
		return fmt.Errorf("%w: sound.backend %q (want wav, synth or none)", ErrInvalid, c.Sound.Backend)
	}
	if c.Frame.FPS <= 0 {
		return fmt.Errorf("%w: frame.fps must be positive, got %d", ErrInvalid, c.Frame.FPS)
	}
	if !positive(c.Run.Dt) {
		return fmt.Errorf("%w: run.dt must be positive and finite, got %g", ErrInvalid, c.Run.Dt)
	}
	if !positive(c.Run.Duration) {
		return fmt.Errorf("%w: run.duration must be positive and finite, got %g", ErrInvalid, c.Run.Duration)
	}
	for name, v := range map[string]float64{"x": c.Ball.X, "y": c.Ball.Y, "vx": c.Ball.VX, "vy": c.Ball.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: ball.%s must be finite, got %g", ErrInvalid, name, v)
		}
	}
	return nil
}

// positive rejects zero, negatives, NaN and +Inf.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Simulation builds the simulation context described by the config.
func (c *Config) Simulation() (*arena.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	a, err := arena.NewArena(arena.Vec2{}, c.Arena.OuterRadius, c.Arena.BallRadius)
	if err != nil {
		return nil, err
	}
	integ, err := arena.GetIntegrator(c.Physics.Integrator)
	if err != nil {
		return nil, err
	}
	return arena.NewSimulation(arena.Config{
		Arena:      a,
		Params:     arena.Params{Gravity: c.Physics.Gravity, Damping: c.Physics.Damping},
		Integrator: integ,
		Sectors:    c.Sound.Sectors,
		Initial: arena.Ball{
			Pos: arena.Vec2{X: c.Ball.X, Y: c.Ball.Y},
			Vel: arena.Vec2{X: c.Ball.VX, Y: c.Ball.VY},
		},
	})
}

// SoundPaths lists the cue files in sector order. Missing entries are
// returned as empty strings so that the bank keeps its size.
func (c *Config) SoundPaths() []string {
	paths := make([]string, c.Sound.Sectors)
	for i := range paths {
		if i < len(c.Sound.Files) && c.Sound.Files[i] != "" {
			paths[i] = filepath.Join(c.Sound.Dir, c.Sound.Prefix+c.Sound.Files[i])
		}
	}
	return paths
}
