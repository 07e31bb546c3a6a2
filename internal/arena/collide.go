package arena

import "math"

// Resolve tests b against the arena wall. On contact the velocity is
// reflected about the outward normal and scaled by damping, and the ball is
// put back onto the containment circle. The returned Contact has no sector
// or time; Simulation fills those in.
//
// Only a ball moving outward collides. One already on or past the wall but
// heading back in is clamped onto the circle with its velocity untouched, so
// a resolved ball never bounces twice. A ball sitting exactly on the center
// has no normal and never collides.
func (a Arena) Resolve(b Ball, damping float64) (Ball, Contact, bool) {
	d := b.Pos.Sub(a.center)
	dist := d.Len()
	limit := a.Containment()

	if dist < limit || dist == 0 {
		return b, Contact{}, false
	}

	n := d.Scale(1 / dist)
	dot := b.Vel.Dot(n)
	if dot <= 0 {
		if dist > limit {
			b.Pos = a.center.Add(n.Scale(limit))
		}
		return b, Contact{}, false
	}

	before := b.Vel.Len()
	b.Vel = b.Vel.Sub(n.Scale(2 * dot)).Scale(damping)
	b.Pos = a.center.Add(n.Scale(limit))

	return b, Contact{
		Angle:       n.Angle(),
		Normal:      n,
		Pos:         b.Pos,
		Impact:      math.Abs(dot),
		SpeedBefore: before,
		SpeedAfter:  b.Vel.Len(),
	}, true
}
