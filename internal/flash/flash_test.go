package flash

import (
	"testing"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/sim"
)

func TestTriggerAndFade(t *testing.T) {
	s := New(8, 1.0)
	if s.Active() {
		t.Fatal("new highlights should be idle")
	}

	s.Trigger(3)
	if s.Level(3) != 1 {
		t.Fatalf("Level(3) = %f, want 1", s.Level(3))
	}

	s.Update(0.5)
	mid := s.Level(3)
	if mid <= 0 || mid >= 1 {
		t.Errorf("Level(3) halfway = %f, want in (0, 1)", mid)
	}
	if s.Level(2) != 0 {
		t.Error("untouched sector lit")
	}

	s.Update(0.6)
	if s.Level(3) != 0 || s.Active() {
		t.Errorf("Level(3) after fade = %f, active %v", s.Level(3), s.Active())
	}
}

func TestTriggerOutOfRange(t *testing.T) {
	s := New(4, 0.5)
	s.Trigger(-1)
	s.Trigger(4)
	if s.Active() {
		t.Error("out of range trigger lit a sector")
	}
	if s.Level(10) != 0 {
		t.Error("Level out of range should be 0")
	}
}

func TestOnFrame(t *testing.T) {
	s := New(8, 0)
	s.OnFrame(sim.Frame{Dt: 0.016, Hit: true, Contact: arena.Contact{Sector: 5}})
	if s.Level(5) != 1 {
		t.Fatalf("Level(5) = %f, want 1", s.Level(5))
	}

	for i := 0; i < 10; i++ {
		s.OnFrame(sim.Frame{Dt: 0.016})
	}
	if l := s.Level(5); l <= 0 || l >= 1 {
		t.Errorf("Level(5) = %f, want fading", l)
	}

	s.Reset()
	if s.Active() || s.Level(5) != 0 {
		t.Error("Reset left a sector lit")
	}
}

func TestDefaults(t *testing.T) {
	s := New(0, -1)
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if s.duration != DefaultDuration {
		t.Errorf("duration = %f", s.duration)
	}
}
