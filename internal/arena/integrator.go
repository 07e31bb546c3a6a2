package arena

import (
	"fmt"
	"sort"
)

// Integrator advances a ball under constant acceleration.
type Integrator interface {
	Name() string
	Step(b Ball, acc Vec2, dt float64) Ball
}

// SemiImplicitEuler updates velocity first, then moves with the new velocity.
type SemiImplicitEuler struct{}

func (SemiImplicitEuler) Name() string { return "euler" }

func (SemiImplicitEuler) Step(b Ball, acc Vec2, dt float64) Ball {
	b.Vel = b.Vel.Add(acc.Scale(dt))
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	return b
}

// VelocityVerlet is exact for constant acceleration.
type VelocityVerlet struct{}

func (VelocityVerlet) Name() string { return "verlet" }

func (VelocityVerlet) Step(b Ball, acc Vec2, dt float64) Ball {
	b.Pos = b.Pos.Add(b.Vel.Scale(dt)).Add(acc.Scale(0.5 * dt * dt))
	b.Vel = b.Vel.Add(acc.Scale(dt))
	return b
}

var integrators = map[string]Integrator{
	"euler":  SemiImplicitEuler{},
	"verlet": VelocityVerlet{},
}

func GetIntegrator(name string) (Integrator, error) {
	if name == "" {
		return SemiImplicitEuler{}, nil
	}
	integ, ok := integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrIntegrator, name, IntegratorNames())
	}
	return integ, nil
}

func IntegratorNames() []string {
	names := make([]string, 0, len(integrators))
	for name := range integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Gravity returns the acceleration vector for a downward pull of magnitude g.
func Gravity(g float64) Vec2 {
	return Vec2{0, -g}
}
