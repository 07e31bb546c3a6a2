// Package gui is the desktop front end, a raylib window drawn with 2D
// shape batches.
package gui

import (
	"errors"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/flash"
	"github.com/san-kum/chime/internal/sim"
)

var ErrNoWindow = errors.New("gui: window could not be created")

var (
	colBg     = rl.NewColor(10, 10, 12, 255)
	colArena  = rl.NewColor(255, 255, 255, 51)
	colFlash  = rl.NewColor(255, 209, 102, 255)
	colSector = rl.NewColor(255, 255, 255, 90)
	colBall   = rl.NewColor(51, 204, 102, 255)
	colText   = rl.NewColor(140, 140, 140, 255)
)

type Options struct {
	Title         string
	Size          int
	ArenaSegments int
	BallSegments  int
	ShowSectors   bool
	VSync         bool
}

// Window is both the sim.Surface and the sim.Input of the desktop front end.
type Window struct {
	opts    Options
	flashes *flash.Sectors
	log     *slog.Logger

	quit    bool
	onReset func()
	hits    int
}

var (
	_ sim.Surface = (*Window)(nil)
	_ sim.Input   = (*Window)(nil)
)

func Open(opts Options, log *slog.Logger) (*Window, error) {
	if log == nil {
		log = slog.Default()
	}
	if opts.Size <= 0 {
		opts.Size = 800
	}

	flags := uint32(rl.FlagMsaa4xHint)
	if opts.VSync {
		flags |= rl.FlagVsyncHint
	}
	rl.SetConfigFlags(flags)
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(opts.Size), int32(opts.Size), opts.Title)
	if !rl.IsWindowReady() {
		return nil, ErrNoWindow
	}
	// Esc is handled with the other keys so it goes through the same quit path.
	rl.SetExitKey(0)
	log.Debug("window open", "size", opts.Size, "vsync", opts.VSync)

	return &Window{opts: opts, log: log}, nil
}

// OnReset registers the action for the reset key.
func (w *Window) OnReset(fn func()) { w.onReset = fn }

// handleKeys reads the key presses raylib collected at the last EndDrawing.
func (w *Window) handleKeys() {
	if rl.IsKeyPressed(rl.KeyEscape) || rl.IsKeyPressed(rl.KeyQ) {
		w.quit = true
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if w.onReset != nil {
			w.onReset()
		}
		if w.flashes != nil {
			w.flashes.Reset()
		}
		w.hits = 0
		w.log.Debug("reset")
	}
	if rl.IsKeyPressed(rl.KeyS) {
		w.opts.ShowSectors = !w.opts.ShowSectors
	}
}

func (w *Window) QuitRequested() bool {
	w.handleKeys()
	return w.quit || rl.WindowShouldClose()
}

// Present ends the frame; raylib swaps buffers and polls input here.
func (w *Window) Present() error {
	rl.EndDrawing()
	return nil
}

func (w *Window) Close() {
	rl.CloseWindow()
}

func (w *Window) Render(f sim.Frame) error {
	if w.flashes == nil || w.flashes.Len() != f.Sectors {
		w.flashes = flash.New(f.Sectors, flash.DefaultDuration)
	}
	w.flashes.OnFrame(f)
	if f.Hit {
		w.hits++
	}

	rl.BeginDrawing()
	rl.ClearBackground(colBg)

	l := newLayout(w.opts.Size, f.Arena)
	center := f.Arena.Center()
	outer := f.Arena.OuterRadius()

	fan(l, arena.Fan(center, outer, w.opts.ArenaSegments), colArena)

	for i := 0; i < f.Sectors; i++ {
		level := w.flashes.Level(i)
		if level <= 0 {
			continue
		}
		from, to := arena.SectorBounds(i, f.Sectors)
		fan(l, arena.Wedge(center, outer, from, to, 16), rl.ColorAlpha(colFlash, float32(0.5*level)))
	}

	if w.opts.ShowSectors {
		c := l.point(center)
		for i := 0; i < f.Sectors; i++ {
			from, _ := arena.SectorBounds(i, f.Sectors)
			edge := arena.Wedge(center, outer, from, from, 1)[1]
			rl.DrawLineV(c, l.point(edge), colSector)
		}
	}

	fan(l, arena.Fan(f.Ball.Pos, f.Arena.BallRadius(), w.opts.BallSegments), colBall)

	rl.DrawText(fmt.Sprintf("t=%.1fs  %d contacts", f.Time, w.hits), 12, 12, 18, colText)
	return nil
}
