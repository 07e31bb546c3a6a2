package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/sim"
)

var presetInfo = map[string]string{
	"musical":    "the classic bounce",
	"damped":     "loses 10% per hit",
	"drop":       "falls and settles",
	"orbit":      "no gravity",
	"pentatonic": "five synth notes",
	"verlet":     "velocity verlet",
	"chimes":     "twelve semitones",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// Attach is called with the chosen config before the simulation starts and
// may return a listener for its contacts, or nil.
type Attach func(cfg *config.Config) arena.ContactListener

type param struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
	step float64
}

var editable = []param{
	{"gravity", func(c *config.Config) float64 { return c.Physics.Gravity }, func(c *config.Config, v float64) { c.Physics.Gravity = v }, 10},
	{"damping", func(c *config.Config) float64 { return c.Physics.Damping }, func(c *config.Config, v float64) { c.Physics.Damping = v }, 0.05},
	{"vx", func(c *config.Config) float64 { return c.Ball.VX }, func(c *config.Config, v float64) { c.Ball.VX = v }, 25},
	{"vy", func(c *config.Config) float64 { return c.Ball.VY }, func(c *config.Config, v float64) { c.Ball.VY = v }, 25},
	{"sectors", func(c *config.Config) float64 { return float64(c.Sound.Sectors) }, func(c *config.Config, v float64) { c.Sound.Sectors = int(v) }, 1},
}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	warn          string
	attach        Attach
	clock         func() sim.Clock
	liveModel     Model
}

func NewInteractiveApp(attach Attach) *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		attach:  attach,
		clock:   func() sim.Clock { return sim.NewWallClock() },
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.paramCursor, m.warn = stateConfig, 0, ""
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	p := editable[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				p.set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(editable)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", p.get(m.cfg))
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		p.set(m.cfg, p.get(m.cfg)-p.step)
	case "right", "l":
		p.set(m.cfg, p.get(m.cfg)+p.step)
	}
	return m, nil
}

func (m *model) start() tea.Cmd {
	var listeners []arena.ContactListener
	if m.attach != nil {
		if l := m.attach(m.cfg); l != nil {
			listeners = append(listeners, l)
		}
	}
	live, err := NewModel(m.selected, m.cfg, m.clock(), listeners...)
	if err != nil {
		m.warn = err.Error()
		return nil
	}
	m.liveModel = live
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDetail   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	headerAccent = lipgloss.Color("#00cccc")
)

func keys(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("CHIME", headerAccent, "#ff88ff") + "\n    " + Subtle.Render("ball in a ring of bells") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-12s", name)), detailStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-12s", name)), idleDetail.Render(desc)))
		}
	}
	b.WriteString("\n    " + keys("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + lipgloss.NewStyle().Foreground(headerAccent).Bold(true).Render(strings.ToUpper(m.selected)) + "\n    " + Subtle.Render(presetInfo[m.selected]) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, p := range editable {
		valStr := fmt.Sprintf("%8.2f", p.get(m.cfg))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", p.name)), detailStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", p.name)), idleDetail.Render(valStr)))
		}
	}
	if m.warn != "" {
		b.WriteString("\n    " + warnStyle.Render(m.warn) + "\n")
	}
	b.WriteString("\n    " + keys("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive(attach Attach) error {
	_, err := tea.NewProgram(NewInteractiveApp(attach), tea.WithAltScreen()).Run()
	return err
}
