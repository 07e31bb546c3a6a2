package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/chime/internal/arena"
)

var ErrInvalidConfig = errors.New("sim: invalid driver config")

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Duration
}

// Frame is what a surface draws and observers see after one step.
type Frame struct {
	Index   int
	Time    float64
	Dt      float64
	Ball    arena.Ball
	Arena   arena.Arena
	Sectors int
	Contact arena.Contact
	Hit     bool
}

type Surface interface {
	Render(f Frame) error
	Present() error
}

// Input reports whether the user asked to quit. Implementations poll their
// event source on every call.
type Input interface {
	QuitRequested() bool
}

type Observer interface {
	OnFrame(f Frame)
}

type Config struct {
	// FPS caps the frame rate in Run. Zero runs unthrottled.
	FPS int
	// MaxDt bounds a single step in seconds.
	MaxDt float64
	// MaxFrames stops the loop after that many frames. Zero means no bound.
	MaxFrames int
}

// StepError wraps a surface failure with the frame it happened on.
type StepError struct {
	Frame int
	Time  float64
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type nullSurface struct{}

func (nullSurface) Render(Frame) error { return nil }
func (nullSurface) Present() error     { return nil }

type never struct{}

func (never) QuitRequested() bool { return false }

// QuitFunc adapts a plain function to Input.
type QuitFunc func() bool

func (f QuitFunc) QuitRequested() bool { return f() }

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(f Frame)

func (f ObserverFunc) OnFrame(fr Frame) { f(fr) }
