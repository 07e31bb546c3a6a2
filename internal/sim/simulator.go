package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/chime/internal/arena"
)

// Simulator is the frame driver: poll input, advance the clock, step the
// simulation, render and present, then sleep off the rest of the frame.
type Simulator struct {
	world     *arena.Simulation
	clock     Clock
	surface   Surface
	input     Input
	cfg       Config
	observers []Observer

	prev  time.Duration
	frame int
	sleep func(time.Duration)
}

// New builds a driver. A nil surface renders nothing and a nil input never
// asks to quit.
func New(world *arena.Simulation, clock Clock, surface Surface, input Input, cfg Config) (*Simulator, error) {
	if world == nil {
		return nil, fmt.Errorf("%w: nil simulation", ErrInvalidConfig)
	}
	if clock == nil {
		return nil, fmt.Errorf("%w: nil clock", ErrInvalidConfig)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if surface == nil {
		surface = nullSurface{}
	}
	if input == nil {
		input = never{}
	}
	return &Simulator{
		world:   world,
		clock:   clock,
		surface: surface,
		input:   input,
		cfg:     cfg,
		prev:    clock.Now(),
		sleep:   time.Sleep,
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.FPS < 0 {
		return fmt.Errorf("%w: fps must not be negative, got %d", ErrInvalidConfig, cfg.FPS)
	}
	if !(cfg.MaxDt > 0) || math.IsInf(cfg.MaxDt, 1) {
		return fmt.Errorf("%w: max dt must be positive and finite, got %f", ErrInvalidConfig, cfg.MaxDt)
	}
	if cfg.MaxFrames < 0 {
		return fmt.Errorf("%w: max frames must not be negative, got %d", ErrInvalidConfig, cfg.MaxFrames)
	}
	return nil
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) World() *arena.Simulation { return s.world }
func (s *Simulator) Frames() int              { return s.frame }

// Frame runs one iteration and reports whether the loop should continue.
func (s *Simulator) Frame() (bool, error) {
	if s.cfg.MaxFrames > 0 && s.frame >= s.cfg.MaxFrames {
		return false, nil
	}
	if s.input.QuitRequested() {
		return false, nil
	}

	now := s.clock.Now()
	dt := ClampDt((now - s.prev).Seconds(), s.cfg.MaxDt)
	s.prev = now

	c, hit := s.world.Step(dt)
	f := Frame{
		Index:   s.frame,
		Time:    s.world.Time(),
		Dt:      dt,
		Ball:    s.world.Ball(),
		Arena:   s.world.Arena(),
		Sectors: s.world.Sectors(),
		Contact: c,
		Hit:     hit,
	}
	for _, obs := range s.observers {
		obs.OnFrame(f)
	}

	if err := s.surface.Render(f); err != nil {
		return false, &StepError{Frame: f.Index, Time: f.Time, Err: err}
	}
	if err := s.surface.Present(); err != nil {
		return false, &StepError{Frame: f.Index, Time: f.Time, Err: err}
	}

	s.frame++
	return true, nil
}

// Run loops until quit, the frame bound, a surface error or ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	var budget time.Duration
	if s.cfg.FPS > 0 {
		budget = time.Second / time.Duration(s.cfg.FPS)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		ok, err := s.Frame()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if budget > 0 {
			if rest := budget - time.Since(start); rest > 0 {
				s.sleep(rest)
			}
		}
	}
}

// Reset restores the initial ball and restarts dt measurement.
func (s *Simulator) Reset() {
	s.world.Reset()
	s.prev = s.clock.Now()
}

// Resync restarts dt measurement without touching the simulation, so a
// paused front end does not see the pause as one long frame.
func (s *Simulator) Resync() {
	s.prev = s.clock.Now()
}
