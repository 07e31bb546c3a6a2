// Package flash fades sector highlights after each wall contact.
package flash

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/san-kum/chime/internal/sim"
)

const DefaultDuration = 0.6

// Sectors holds one highlight level in [0, 1] per sector. A contact sets its
// sector to 1, which then eases back to 0. It is driven by OnFrame and has
// no clock of its own.
type Sectors struct {
	tweens   []*gween.Tween
	levels   []float64
	duration float32
	easeFn   ease.TweenFunc
}

func New(n int, duration float32) *Sectors {
	if n < 1 {
		n = 1
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Sectors{
		tweens:   make([]*gween.Tween, n),
		levels:   make([]float64, n),
		duration: duration,
		easeFn:   ease.OutQuad,
	}
}

func (s *Sectors) Len() int { return len(s.levels) }

// Trigger lights sector i. Repeat hits restart the fade.
func (s *Sectors) Trigger(i int) {
	if i < 0 || i >= len(s.levels) {
		return
	}
	s.tweens[i] = gween.New(1, 0, s.duration, s.easeFn)
	s.levels[i] = 1
}

// Update advances every active fade by dt seconds.
func (s *Sectors) Update(dt float32) {
	for i, tw := range s.tweens {
		if tw == nil {
			continue
		}
		val, done := tw.Update(dt)
		s.levels[i] = float64(val)
		if done {
			s.tweens[i] = nil
			s.levels[i] = 0
		}
	}
}

func (s *Sectors) OnFrame(f sim.Frame) {
	s.Update(float32(f.Dt))
	if f.Hit {
		s.Trigger(f.Contact.Sector)
	}
}

func (s *Sectors) Level(i int) float64 {
	if i < 0 || i >= len(s.levels) {
		return 0
	}
	return s.levels[i]
}

// Active reports whether any sector is still lit.
func (s *Sectors) Active() bool {
	for _, tw := range s.tweens {
		if tw != nil {
			return true
		}
	}
	return false
}

func (s *Sectors) Reset() {
	for i := range s.tweens {
		s.tweens[i] = nil
		s.levels[i] = 0
	}
}
