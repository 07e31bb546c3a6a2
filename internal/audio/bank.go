package audio

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/chime/internal/arena"
)

// Cue is one playable sound. Play must return without waiting for playback.
type Cue interface {
	Play()
}

// Bank holds one cue per sector. Its size is fixed at construction; empty
// slots stay silent.
type Bank struct {
	cues      []Cue
	counts    []int
	minImpact float64
	log       *slog.Logger
}

func NewBank(size int, log *slog.Logger) (*Bank, error) {
	if size < 1 {
		return nil, fmt.Errorf("audio: bank size %d: %w", size, arena.ErrSectors)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bank{
		cues:   make([]Cue, size),
		counts: make([]int, size),
		log:    log,
	}, nil
}

func (b *Bank) Len() int { return len(b.cues) }

func (b *Bank) Set(i int, c Cue) error {
	if i < 0 || i >= len(b.cues) {
		return fmt.Errorf("audio: cue index %d out of range [0, %d)", i, len(b.cues))
	}
	b.cues[i] = c
	return nil
}

// Loaded counts the non-empty slots.
func (b *Bank) Loaded() int {
	n := 0
	for _, c := range b.cues {
		if c != nil {
			n++
		}
	}
	return n
}

// SetMinImpact mutes contacts slower than v along the wall normal.
func (b *Bank) SetMinImpact(v float64) { b.minImpact = v }

// Play fires cue i. Out-of-range and empty slots are no-ops.
func (b *Bank) Play(i int) bool {
	if i < 0 || i >= len(b.cues) {
		b.log.Debug("cue out of range", "index", i, "size", len(b.cues))
		return false
	}
	b.counts[i]++
	if b.cues[i] == nil {
		return false
	}
	b.cues[i].Play()
	return true
}

func (b *Bank) OnContact(c arena.Contact) {
	if c.Impact < b.minImpact {
		return
	}
	b.Play(c.Sector)
}

// Counts returns how many times each slot was requested.
func (b *Bank) Counts() []int {
	out := make([]int, len(b.counts))
	copy(out, b.counts)
	return out
}
