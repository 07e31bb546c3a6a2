package metrics

import "github.com/san-kum/chime/internal/sim"

// Containment is the fraction of frames with the ball inside the
// containment circle, within tolerance.
type Containment struct {
	name       string
	tolerance  float64
	violations int
	samples    int
}

func NewContainment(tolerance float64) *Containment {
	return &Containment{
		name:      "containment",
		tolerance: tolerance,
	}
}

func (s *Containment) Name() string {
	return s.name
}

func (s *Containment) OnFrame(f sim.Frame) {
	s.samples++
	limit := f.Arena.Containment() + s.tolerance
	if f.Ball.Pos.Sub(f.Arena.Center()).Len() > limit {
		s.violations++
	}
}

func (s *Containment) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Containment) Reset() {
	s.violations = 0
	s.samples = 0
}
