package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/sim"
)

type SVGOptions struct {
	Size        int
	Stroke      string
	ShowSectors bool
	ShowHits    bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Size: 800, Stroke: "#33cc66", ShowSectors: true, ShowHits: true}
}

// RunToSVG draws the arena, its sector boundaries, the recorded path and
// one dot per wall contact coloured by sector. Arena y-up is flipped to SVG
// y-down.
func RunToSVG(w io.Writer, a arena.Arena, sectors int, samples []sim.Sample, contacts []arena.Contact, opts SVGOptions) error {
	if opts.Size <= 0 {
		opts.Size = 800
	}
	if opts.Stroke == "" {
		opts.Stroke = "#33cc66"
	}
	size := float64(opts.Size)
	half := size / 2
	scale := half / (a.OuterRadius() * 8 / 7)
	center := a.Center()
	pt := func(v arena.Vec2) (float64, float64) {
		d := v.Sub(center)
		return half + d.X*scale, half - d.Y*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Size, opts.Size, opts.Size, opts.Size)

	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#ffffff" fill-opacity="0.2"/>
`, half, half, a.OuterRadius()*scale)

	if opts.ShowSectors && sectors > 0 {
		sb.WriteString(`<g stroke="#ffffff" stroke-opacity="0.35" stroke-width="1">` + "\n")
		for i := 0; i < sectors; i++ {
			from, _ := arena.SectorBounds(i, sectors)
			rad := from * math.Pi / 180
			edge := center.Add(arena.Vec2{X: math.Cos(rad), Y: math.Sin(rad)}.Scale(a.OuterRadius()))
			x, y := pt(edge)
			fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", half, half, x, y)
		}
		sb.WriteString("</g>\n")
	}

	if len(samples) > 1 {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.8" d="M`, opts.Stroke)
		for i, s := range samples {
			x, y := pt(s.Ball.Pos)
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString(`"/>` + "\n")
	}

	if opts.ShowHits && len(contacts) > 0 {
		sb.WriteString("<g>\n")
		for _, c := range contacts {
			if !c.Pos.IsFinite() || (c.Pos == arena.Vec2{} && c.Normal == arena.Vec2{}) {
				// Contacts loaded from CSV carry only the angle.
				rad := c.Angle * math.Pi / 180
				c.Pos = center.Add(arena.Vec2{X: math.Cos(rad), Y: math.Sin(rad)}.Scale(a.Containment()))
			}
			x, y := pt(c.Pos)
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", x, y, SectorColor(c.Sector, sectors))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// SectorColor spreads sectors evenly around the hue wheel.
func SectorColor(i, n int) string {
	if n < 1 {
		n = 1
	}
	h := float64(((i%n)+n)%n) / float64(n)
	r, g, b := hsvToRGB(h, 0.65, 1)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}
