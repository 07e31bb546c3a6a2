package arena

import "math"

// Fan approximates a filled circle as a triangle fan: the center followed by
// segments+1 rim points, the last one closing the loop onto the first.
func Fan(center Vec2, radius float64, segments int) []Vec2 {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Vec2, 0, segments+2)
	pts = append(pts, center)
	pts = append(pts, Rim(center, radius, segments)...)
	return pts
}

// Rim returns the segments+1 outline points of a circle, closed.
func Rim(center Vec2, radius float64, segments int) []Vec2 {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Vec2, segments+1)
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		s, c := math.Sincos(float64(i) * step)
		pts[i] = Vec2{center.X + c*radius, center.Y + s*radius}
	}
	pts[segments] = pts[0]
	return pts
}

// Wedge is a triangle fan for the slice of a circle between two angles in
// degrees, counter-clockwise from `from`: the center followed by
// segments+1 arc points.
func Wedge(center Vec2, radius, from, to float64, segments int) []Vec2 {
	if segments < 1 {
		segments = 1
	}
	for to < from {
		to += 360
	}
	pts := make([]Vec2, 0, segments+2)
	pts = append(pts, center)
	a0 := from * math.Pi / 180
	span := (to - from) * math.Pi / 180
	for i := 0; i <= segments; i++ {
		s, c := math.Sincos(a0 + span*float64(i)/float64(segments))
		pts = append(pts, Vec2{center.X + c*radius, center.Y + s*radius})
	}
	return pts
}
