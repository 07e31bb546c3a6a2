package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/chime/internal/arena"
)

// layout places y-up arena coordinates in y-down window pixels. The arena
// fills the window with a margin of one seventh of its radius, which gives
// the classic 350 px ring in an 800 px window.
type layout struct {
	size   float64
	origin arena.Vec2
	center arena.Vec2
	scale  float64
}

func newLayout(size int, a arena.Arena) layout {
	half := float64(size) / 2
	return layout{
		size:   float64(size),
		origin: arena.Vec2{X: half, Y: half},
		center: a.Center(),
		scale:  half / (a.OuterRadius() * 8 / 7),
	}
}

func (l layout) point(v arena.Vec2) rl.Vector2 {
	p := l.origin.Add(v.Sub(l.center).Scale(l.scale))
	return rl.NewVector2(float32(p.X), float32(l.size-p.Y))
}

// fan draws a triangle fan whose first point is the hub. The y flip keeps
// the counter-clockwise winding raylib expects on screen.
func fan(l layout, pts []arena.Vec2, c rl.Color) {
	if len(pts) < 3 {
		return
	}
	out := make([]rl.Vector2, len(pts))
	for i, p := range pts {
		out[i] = l.point(p)
	}
	rl.DrawTriangleFan(out, c)
}
