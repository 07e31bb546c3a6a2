package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/sim"
)

func TestRunToSVG(t *testing.T) {
	a, err := arena.NewArena(arena.Vec2{}, 350, 20)
	if err != nil {
		t.Fatal(err)
	}
	samples := []sim.Sample{
		{Ball: arena.Ball{Pos: arena.Vec2{}}},
		{Ball: arena.Ball{Pos: arena.Vec2{X: 100, Y: 100}}},
		{Ball: arena.Ball{Pos: arena.Vec2{X: 200, Y: -50}}},
	}
	contacts := []arena.Contact{
		{Angle: 90, Sector: 2},
		{Angle: 0, Sector: 0, Pos: arena.Vec2{X: 330}, Normal: arena.Vec2{X: 1}},
	}

	var buf bytes.Buffer
	if err := RunToSVG(&buf, a, 8, samples, contacts, DefaultSVGOptions()); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	if n := strings.Count(svg, "<line "); n != 8 {
		t.Errorf("got %d sector lines, want 8", n)
	}
	if !strings.Contains(svg, `d="M400.0,400.0 L`) {
		t.Error("path should start at the arena center")
	}
	// 100 units up from the center is 100*scale pixels above it.
	if !strings.Contains(svg, "L500.0,300.0") {
		t.Errorf("y-up not flipped:\n%s", svg)
	}
	if n := strings.Count(svg, `r="3"`); n != 2 {
		t.Errorf("got %d contact dots, want 2", n)
	}
	// Angle-only contact lands on the containment circle at the top.
	if !strings.Contains(svg, `cx="400.0" cy="70.0" r="3"`) {
		t.Errorf("angle-only contact misplaced:\n%s", svg)
	}
}

func TestRunToSVGOptions(t *testing.T) {
	a, _ := arena.NewArena(arena.Vec2{}, 350, 20)
	var buf bytes.Buffer
	err := RunToSVG(&buf, a, 8, nil, []arena.Contact{{Sector: 1}}, SVGOptions{Size: 200})
	if err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	if strings.Contains(svg, "<line ") || strings.Contains(svg, "<path ") || strings.Contains(svg, `r="3"`) {
		t.Error("disabled layers were drawn")
	}
	if !strings.Contains(svg, `width="200"`) {
		t.Error("size not applied")
	}
}

func TestSectorColor(t *testing.T) {
	if SectorColor(0, 6) != "#ff5959" {
		t.Errorf("sector 0 = %s", SectorColor(0, 6))
	}
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		seen[SectorColor(i, 8)] = true
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct colours, got %d", len(seen))
	}
	if SectorColor(-1, 8) != SectorColor(7, 8) {
		t.Error("negative sector should wrap")
	}
}
