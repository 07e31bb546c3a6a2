package arena

import "fmt"

type Config struct {
	Arena      Arena
	Params     Params
	Integrator Integrator
	Sectors    int
	Initial    Ball
}

// Simulation owns the ball and everything that acts on it. It is not safe
// for concurrent use; the frame driver is its only caller.
type Simulation struct {
	arena     Arena
	params    Params
	integ     Integrator
	sectors   int
	initial   Ball
	ball      Ball
	t         float64
	contacts  int
	listeners []ContactListener
}

func NewSimulation(cfg Config) (*Simulation, error) {
	if cfg.Arena.Containment() <= 0 {
		return nil, fmt.Errorf("simulation: %w", ErrRadius)
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	if cfg.Sectors < 1 {
		return nil, fmt.Errorf("simulation: %w", &ParamError{Name: "sectors", Value: float64(cfg.Sectors), Err: ErrSectors})
	}
	if !cfg.Initial.Pos.IsFinite() || !cfg.Initial.Vel.IsFinite() {
		return nil, fmt.Errorf("simulation: initial ball must be finite")
	}
	integ := cfg.Integrator
	if integ == nil {
		integ = SemiImplicitEuler{}
	}
	return &Simulation{
		arena:   cfg.Arena,
		params:  cfg.Params,
		integ:   integ,
		sectors: cfg.Sectors,
		initial: cfg.Initial,
		ball:    cfg.Initial,
	}, nil
}

func (s *Simulation) AddListener(l ContactListener) { s.listeners = append(s.listeners, l) }

func (s *Simulation) Arena() Arena           { return s.arena }
func (s *Simulation) Params() Params         { return s.params }
func (s *Simulation) Integrator() Integrator { return s.integ }
func (s *Simulation) Sectors() int           { return s.sectors }
func (s *Simulation) Ball() Ball             { return s.ball }
func (s *Simulation) Time() float64          { return s.t }
func (s *Simulation) Contacts() int          { return s.contacts }

// Step integrates one frame of dt seconds, resolves the wall and notifies
// listeners of a contact, if any.
func (s *Simulation) Step(dt float64) (Contact, bool) {
	s.ball = s.integ.Step(s.ball, Gravity(s.params.Gravity), dt)
	s.t += dt

	var c Contact
	var hit bool
	s.ball, c, hit = s.arena.Resolve(s.ball, s.params.Damping)
	if !hit {
		return Contact{}, false
	}

	c.Time = s.t
	c.Sector = SectorIndex(c.Angle, s.sectors)
	s.contacts++
	for _, l := range s.listeners {
		l.OnContact(c)
	}
	return c, true
}

// Reset puts the ball back to its initial state and rewinds time.
func (s *Simulation) Reset() {
	s.ball = s.initial
	s.t = 0
	s.contacts = 0
}

// SetParams swaps gravity and damping between steps. The ball keeps its
// current state.
func (s *Simulation) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// Energy is the mechanical energy per unit mass, with the potential zero at
// the arena center.
func (s *Simulation) Energy() float64 {
	return Energy(s.ball, s.arena.center, s.params.Gravity)
}

func Energy(b Ball, center Vec2, gravity float64) float64 {
	v := b.Vel.Len()
	return 0.5*v*v + gravity*(b.Pos.Y-center.Y)
}
