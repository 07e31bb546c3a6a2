package viz

import (
	"math"
	"strings"

	"github.com/san-kum/chime/internal/arena"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y) in sub-pixel coordinates. The canvas is
// Width*2 by Height*4 dots.
func (c *Canvas) Set(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= bit
}

func (c *Canvas) Unset(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= bit
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.locate(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) locate(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Projection maps y-up arena coordinates onto canvas dots, fitting a circle
// of the given radius with a small margin.
type Projection struct {
	cx, cy int
	scale  float64
	center arena.Vec2
}

func NewProjection(c *Canvas, center arena.Vec2, radius float64) Projection {
	cw, ch := c.Width*2, c.Height*4
	side := math.Min(float64(cw), float64(ch))
	return Projection{
		cx:     cw / 2,
		cy:     ch / 2,
		scale:  (side - 2) / (2 * radius),
		center: center,
	}
}

func (p Projection) Point(v arena.Vec2) (int, int) {
	d := v.Sub(p.center)
	return p.cx + int(math.Round(d.X*p.scale)), p.cy - int(math.Round(d.Y*p.scale))
}

func (p Projection) Scale() float64 { return p.scale }

// Polyline joins consecutive points.
func (c *Canvas) Polyline(p Projection, pts []arena.Vec2) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := p.Point(pts[i-1])
		x1, y1 := p.Point(pts[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Circle outlines a circle using the same tessellation as the window front end.
func (c *Canvas) Circle(p Projection, center arena.Vec2, r float64, segments int) {
	c.Polyline(p, arena.Rim(center, r, segments))
}

// Disc fills a circle dot by dot.
func (c *Canvas) Disc(p Projection, center arena.Vec2, r float64) {
	x0, y0 := p.Point(center)
	rd := r * p.scale
	n := int(math.Ceil(rd))
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if float64(dx*dx+dy*dy) <= rd*rd {
				c.Set(x0+dx, y0+dy)
			}
		}
	}
	c.Set(x0, y0)
}

// Arc draws the part of a circle between two angles in degrees,
// counter-clockwise from `from`.
func (c *Canvas) Arc(p Projection, center arena.Vec2, r, from, to float64) {
	if to < from {
		to += 360
	}
	steps := int(math.Max(2, (to-from)/3))
	pts := make([]arena.Vec2, steps+1)
	for i := range pts {
		a := (from + (to-from)*float64(i)/float64(steps)) * math.Pi / 180
		pts[i] = center.Add(arena.Vec2{X: r * math.Cos(a), Y: r * math.Sin(a)})
	}
	c.Polyline(p, pts)
}

// Spoke draws a radius at angle deg from inner to outer.
func (c *Canvas) Spoke(p Projection, center arena.Vec2, inner, outer, deg float64) {
	a := deg * math.Pi / 180
	dir := arena.Vec2{X: math.Cos(a), Y: math.Sin(a)}
	x0, y0 := p.Point(center.Add(dir.Scale(inner)))
	x1, y1 := p.Point(center.Add(dir.Scale(outer)))
	c.DrawLine(x0, y0, x1, y1)
}
