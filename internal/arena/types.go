package arena

import "math"

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) IsFinite() bool       { return isFinite(v.X) && isFinite(v.Y) }

// Angle is the direction of v in degrees, in (-180, 180].
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) * 180 / math.Pi }

func (v Vec2) Near(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Ball is the simulated point mass. Arena space is y-up.
type Ball struct {
	Pos Vec2
	Vel Vec2
}

func (b Ball) Speed() float64 { return b.Vel.Len() }

// Arena is the circular container. The zero value is not usable; build one
// with NewArena.
type Arena struct {
	center      Vec2
	outerRadius float64
	ballRadius  float64
}

func NewArena(center Vec2, outerRadius, ballRadius float64) (Arena, error) {
	if !isFinite(outerRadius) || outerRadius <= 0 {
		return Arena{}, &ParamError{Name: "outer_radius", Value: outerRadius, Err: ErrRadius}
	}
	if !isFinite(ballRadius) || ballRadius < 0 || ballRadius >= outerRadius {
		return Arena{}, &ParamError{Name: "ball_radius", Value: ballRadius, Err: ErrRadius}
	}
	if !center.IsFinite() {
		return Arena{}, &ParamError{Name: "center", Value: math.NaN(), Err: ErrRadius}
	}
	return Arena{center: center, outerRadius: outerRadius, ballRadius: ballRadius}, nil
}

func (a Arena) Center() Vec2         { return a.center }
func (a Arena) OuterRadius() float64 { return a.outerRadius }
func (a Arena) BallRadius() float64  { return a.ballRadius }

// Containment is the farthest the ball's center may get from the arena center.
func (a Arena) Containment() float64 { return a.outerRadius - a.ballRadius }

// Contains reports whether p lies strictly inside the containment radius.
func (a Arena) Contains(p Vec2) bool {
	return p.Sub(a.center).Len() < a.Containment()
}

// Params are the physical constants applied every step.
type Params struct {
	Gravity float64
	Damping float64
}

func (p Params) Validate() error {
	if !isFinite(p.Gravity) {
		return &ParamError{Name: "gravity", Value: p.Gravity, Err: ErrGravity}
	}
	if !isFinite(p.Damping) || p.Damping < 0 || p.Damping > 1 {
		return &ParamError{Name: "damping", Value: p.Damping, Err: ErrDamping}
	}
	return nil
}

// Contact describes one wall hit.
type Contact struct {
	Time        float64
	Angle       float64
	Sector      int
	Normal      Vec2
	Pos         Vec2
	Impact      float64
	SpeedBefore float64
	SpeedAfter  float64
}

type ContactListener interface {
	OnContact(c Contact)
}

// ContactFunc adapts a plain function to ContactListener.
type ContactFunc func(c Contact)

func (f ContactFunc) OnContact(c Contact) { f(c) }
