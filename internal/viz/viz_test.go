package viz

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/sim"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(1, 3)
	if c.Grid[0][0] != 0x2800|0x1|0x80 {
		t.Errorf("cell = %U", c.Grid[0][0])
	}
	if !c.IsSet(1, 3) || c.IsSet(1, 2) {
		t.Error("IsSet mismatch")
	}
	c.Unset(0, 0)
	if c.Grid[0][0] != 0x2800|0x80 {
		t.Errorf("cell after unset = %U", c.Grid[0][0])
	}

	c.Set(-1, 0)
	c.Set(100, 100)
	if c.IsSet(-1, 0) || c.IsSet(100, 100) {
		t.Error("out of bounds dots should be ignored")
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("clear left dots behind")
	}
	if strings.Count(c.String(), "\n") != 2 {
		t.Error("expected one line per row")
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	for i := 0; i < 20; i++ {
		if !c.IsSet(i, i) {
			t.Fatalf("diagonal dot %d missing", i)
		}
	}
}

func TestProjection(t *testing.T) {
	c := NewCanvas(60, 24)
	p := NewProjection(c, arena.Vec2{}, 350)

	x, y := p.Point(arena.Vec2{})
	if x != 60 || y != 48 {
		t.Errorf("center -> (%d,%d), want (60,48)", x, y)
	}
	_, top := p.Point(arena.Vec2{Y: 350})
	_, bottom := p.Point(arena.Vec2{Y: -350})
	if top >= y || bottom <= y {
		t.Errorf("y-up not flipped: top=%d center=%d bottom=%d", top, y, bottom)
	}
	if top < 0 || bottom >= 96 {
		t.Errorf("arena does not fit: top=%d bottom=%d", top, bottom)
	}
}

func TestCircleTouchesRim(t *testing.T) {
	c := NewCanvas(60, 24)
	p := NewProjection(c, arena.Vec2{}, 350)
	c.Circle(p, arena.Vec2{}, 350, 360)

	for _, deg := range []float64{0, 90, 180, 270} {
		a := deg * math.Pi / 180
		x, y := p.Point(arena.Vec2{X: 350 * math.Cos(a), Y: 350 * math.Sin(a)})
		if !c.IsSet(x, y) {
			t.Errorf("rim point at %v° not drawn", deg)
		}
	}
	cx, cy := p.Point(arena.Vec2{})
	if c.IsSet(cx, cy) {
		t.Error("circle outline filled the center")
	}

	c.Disc(p, arena.Vec2{}, 20)
	if !c.IsSet(cx, cy) {
		t.Error("disc missing its center")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the default")
	}
	seen := map[string]bool{}
	name := Themes[0].Name
	for range Themes {
		seen[name] = true
		name = NextTheme(name).Name
	}
	if len(seen) != len(Themes) || name != Themes[0].Name {
		t.Errorf("NextTheme did not cycle: %v", seen)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func TestSparkline(t *testing.T) {
	got := SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	if got != "▁▂▃▄▅▆▇█" {
		t.Errorf("sparkline = %q", got)
	}
	if SparklineChart(nil, 3) != "───" {
		t.Error("empty sparkline should be a rule")
	}
}

func TestParseHex(t *testing.T) {
	r, g, b := parseHex("#ff8800")
	if r != 255 || g != 136 || b != 0 {
		t.Errorf("parseHex = %d %d %d", r, g, b)
	}
	if hexColor(r, g, b) != "#ff8800" {
		t.Errorf("hexColor = %s", hexColor(r, g, b))
	}
	r, _, _ = parseHex("bogus")
	if r != 255 {
		t.Error("bad hex should fall back to white")
	}
}

func newTestModel(t *testing.T, listeners ...arena.ContactListener) Model {
	t.Helper()
	m, err := NewModel("musical", config.DefaultConfig(), sim.NewStepClock(1.0/60), listeners...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func tick(m Model, n int) Model {
	for i := 0; i < n; i++ {
		next, _ := m.Update(TickMsg(time.Now()))
		m = next.(Model)
	}
	return m
}

func key(m Model, k string) Model {
	var msg tea.KeyMsg
	if k == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTicks(t *testing.T) {
	var heard int
	m := newTestModel(t, arena.ContactFunc(func(arena.Contact) { heard++ }))
	m = tick(m, 300)

	world := m.driver.World()
	if math.Abs(world.Time()-5) > 1e-6 {
		t.Errorf("time = %f, want 5", world.Time())
	}
	if heard == 0 || heard != m.stats.hits {
		t.Errorf("listener heard %d, stats %d", heard, m.stats.hits)
	}
	total := 0
	for _, h := range m.stats.hist {
		total += h
	}
	if total != heard {
		t.Errorf("histogram total %d, want %d", total, heard)
	}

	view := m.View()
	for _, want := range []string{"MUSICAL", "RUNNING", "Contacts", "Energy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(t)
	m = tick(m, 10)

	m = key(m, " ")
	if m.running {
		t.Fatal("space should pause")
	}
	before := m.driver.World().Time()
	m = tick(m, 10)
	if m.driver.World().Time() != before {
		t.Error("paused model advanced")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show PAUSED")
	}
	m = key(m, " ")
	if !m.running {
		t.Fatal("space should resume")
	}

	m = key(m, "r")
	if m.driver.World().Time() != 0 || m.stats.hits != 0 {
		t.Error("reset did not restore the start")
	}

	show := m.showSectors
	m = key(m, "s")
	if m.showSectors == show {
		t.Error("s should toggle sectors")
	}

	theme := m.theme.Name
	m = key(m, "t")
	if m.theme.Name == theme {
		t.Error("t should change theme")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelRecordsGIF(t *testing.T) {
	m := newTestModel(t)
	m.gifPath = filepath.Join(t.TempDir(), "out.gif")

	m = key(m, "g")
	m = tick(m, 5)
	if len(m.frames) != 5 {
		t.Fatalf("captured %d frames, want 5", len(m.frames))
	}
	m = key(m, "g")
	if m.recording || m.err != nil {
		t.Fatalf("recording=%v err=%v", m.recording, m.err)
	}
	if _, err := os.Stat(m.gifPath); err != nil {
		t.Errorf("gif not written: %v", err)
	}
}

func TestModelRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sound.Sectors = 0
	if _, err := NewModel("bad", cfg, nil); err == nil {
		t.Error("expected error for zero sectors")
	}
}

func TestInteractiveFlow(t *testing.T) {
	var attached *config.Config
	app := NewInteractiveApp(func(cfg *config.Config) arena.ContactListener {
		attached = cfg
		return nil
	})
	app.clock = func() sim.Clock { return sim.NewStepClock(1.0 / 60) }

	send := func(m model, msg tea.KeyMsg) model {
		next, _ := m.Update(msg)
		return next.(model)
	}
	m := *app
	if !strings.Contains(m.View(), "musical") {
		t.Error("menu should list presets")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateConfig || m.selected != m.presets[0] {
		t.Fatalf("state=%d selected=%q", m.state, m.selected)
	}

	g := m.cfg.Physics.Gravity
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if m.cfg.Physics.Gravity != g+10 {
		t.Errorf("gravity = %f, want %f", m.cfg.Physics.Gravity, g+10)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if m.state != stateSim {
		t.Fatalf("state = %d, want sim (warn %q)", m.state, m.warn)
	}
	if attached != m.cfg {
		t.Error("attach was not called with the chosen config")
	}
}
