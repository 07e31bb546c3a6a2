package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/flash"
	"github.com/san-kum/chime/internal/sim"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	trailLength     = 40
)

type TickMsg time.Time

// stats is registered as a frame observer, so it lives behind a pointer
// shared by every copy of Model.
type stats struct {
	last     sim.Frame
	lastHit  arena.Contact
	hits     int
	hist     []int
	energy   []float64
	trail    []arena.Vec2
	gravity  float64
	maxSpeed float64
}

func newStats(sectors int, gravity float64) *stats {
	return &stats{
		hist:    make([]int, sectors),
		energy:  make([]float64, 0, historyCapacity),
		trail:   make([]arena.Vec2, 0, trailLength),
		gravity: gravity,
	}
}

func (s *stats) OnFrame(f sim.Frame) {
	s.last = f
	if f.Hit {
		s.lastHit = f.Contact
		s.hits++
		if f.Contact.Sector >= 0 && f.Contact.Sector < len(s.hist) {
			s.hist[f.Contact.Sector]++
		}
	}
	s.energy = append(s.energy, arena.Energy(f.Ball, f.Arena.Center(), s.gravity))
	if len(s.energy) > historyCapacity {
		s.energy = s.energy[1:]
	}
	s.trail = append(s.trail, f.Ball.Pos)
	if len(s.trail) > trailLength {
		s.trail = s.trail[1:]
	}
	s.maxSpeed = max(s.maxSpeed, f.Ball.Speed())
}

func (s *stats) reset() {
	s.last = sim.Frame{}
	s.lastHit = arena.Contact{}
	s.hits = 0
	clear(s.hist)
	s.energy = s.energy[:0]
	s.trail = s.trail[:0]
	s.maxSpeed = 0
}

// Model is the terminal front end: each tick runs one driver frame and
// redraws the arena on a braille canvas.
type Model struct {
	name          string
	cfg           *config.Config
	driver        *sim.Simulator
	flashes       *flash.Sectors
	stats         *stats
	canvas        *Canvas
	proj          Projection
	theme         Theme
	width, height int
	fps           int
	running       bool
	showSectors   bool
	showHelp      bool
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	err           error
}

// NewModel builds a model for cfg. Listeners, typically the sound bank,
// receive every wall contact.
func NewModel(name string, cfg *config.Config, clock sim.Clock, listeners ...arena.ContactListener) (Model, error) {
	world, err := cfg.Simulation()
	if err != nil {
		return Model{}, err
	}
	for _, l := range listeners {
		world.AddListener(l)
	}
	if clock == nil {
		clock = sim.NewWallClock()
	}
	driver, err := sim.New(world, clock, nil, nil, sim.Config{MaxDt: cfg.Physics.MaxDt})
	if err != nil {
		return Model{}, err
	}

	st := newStats(world.Sectors(), world.Params().Gravity)
	fl := flash.New(world.Sectors(), flash.DefaultDuration)
	driver.AddObserver(st)
	driver.AddObserver(fl)

	canvas := NewCanvas(width, height)
	fps := cfg.Frame.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return Model{
		name:        name,
		cfg:         cfg,
		driver:      driver,
		flashes:     fl,
		stats:       st,
		canvas:      canvas,
		proj:        NewProjection(canvas, world.Arena().Center(), world.Arena().OuterRadius()),
		theme:       Themes[0],
		width:       width,
		height:      height,
		fps:         fps,
		running:     true,
		showSectors: cfg.Frame.ShowSectors,
		gifPath:     "chime.gif",
	}, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Err is the frame error that stopped the program, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running {
				m.driver.Resync()
			}
		case "r":
			m.reset()
		case "s":
			m.showSectors = !m.showSectors
		case "t":
			m.theme = NextTheme(m.theme.Name)
		case "g":
			if m.recording {
				if err := m.saveGIF(); err != nil {
					m.err = err
				}
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if _, err := m.driver.Frame(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) reset() {
	m.driver.Reset()
	m.stats.reset()
	m.flashes.Reset()
}

func (m *Model) draw() {
	m.canvas.Clear()
	a := m.driver.World().Arena()
	center := a.Center()

	m.canvas.Circle(m.proj, center, a.OuterRadius(), m.cfg.Frame.ArenaSegments)

	n := m.driver.World().Sectors()
	if m.showSectors {
		for i := 0; i < n; i++ {
			from, _ := arena.SectorBounds(i, n)
			m.canvas.Spoke(m.proj, center, a.OuterRadius()*0.85, a.OuterRadius(), from)
		}
	}
	for i := 0; i < n; i++ {
		if m.flashes.Level(i) > 0.2 {
			from, to := arena.SectorBounds(i, n)
			m.canvas.Arc(m.proj, center, a.OuterRadius()*0.95, from, to)
		}
	}

	for _, p := range m.stats.trail {
		x, y := m.proj.Point(p)
		m.canvas.Set(x, y)
	}
	ball := m.driver.World().Ball()
	m.canvas.Disc(m.proj, ball.Pos, a.BallRadius())
}

func (m Model) View() string {
	m.draw()
	st := m.stats
	canvasView := canvasStyle.Foreground(m.theme.Rim).Render(m.canvas.String())

	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Text).Render(strings.ToUpper(m.name))
	s.WriteString(title + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(st.energy) > 1 {
		chart := asciigraph.Plot(st.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	world := m.driver.World()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", world.Time()))
	row("Speed", fmt.Sprintf("%.1f (max %.1f)", world.Ball().Speed(), st.maxSpeed))
	row("Contacts", fmt.Sprintf("%d", st.hits))
	if st.hits > 0 {
		row("Last", fmt.Sprintf("%.1f° → sector %d", st.lastHit.Angle, st.lastHit.Sector))
		row("Impact", fmt.Sprintf("%.1f", st.lastHit.Impact))
	}
	row("Integrator", world.Integrator().Name())

	levels := make([]float64, m.flashes.Len())
	for i := range levels {
		levels[i] = m.flashes.Level(i)
	}
	s.WriteString("\n" + SectorStrip(levels, m.theme) + "\n")

	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warn).Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Pause R:Reset Q:Quit\nS:Sectors T:Theme G:Record ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset ball               ║
║  S        - Toggle sector spokes     ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.width*charW, m.height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < m.height*4; y++ {
		for x := 0; x < m.width*2; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	delay := max(100/m.fps, 1)
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// Run starts a full-screen program for m.
func Run(m Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
