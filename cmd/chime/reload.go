package main

import (
	"log/slog"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/audio"
	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/sim"
)

// reloader applies watched config changes between frames, on the loop's
// own goroutine. Geometry and sector count need a restart.
type reloader struct {
	updates <-chan *config.Config
	world   *arena.Simulation
	bank    *audio.Bank
}

func (r *reloader) OnFrame(sim.Frame) {
	var cfg *config.Config
	select {
	case cfg = <-r.updates:
	default:
		return
	}

	p := arena.Params{Gravity: cfg.Physics.Gravity, Damping: cfg.Physics.Damping}
	if err := r.world.SetParams(p); err != nil {
		slog.Warn("reload rejected", "err", err)
		return
	}
	r.bank.SetMinImpact(cfg.Sound.MinImpact)
	if cfg.Sound.Sectors != r.world.Sectors() {
		slog.Warn("sector count change needs a restart", "running", r.world.Sectors(), "config", cfg.Sound.Sectors)
	}
	slog.Info("physics updated", "gravity", p.Gravity, "damping", p.Damping, "min_impact", cfg.Sound.MinImpact)
}
