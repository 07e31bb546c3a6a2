package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view.
type Theme struct {
	Name   string
	Rim    lipgloss.Color
	Ball   lipgloss.Color
	Flash  lipgloss.Color
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Warn   lipgloss.Color
}

var (
	ThemeMarimba = Theme{
		Name:   "marimba",
		Rim:    lipgloss.Color("#c8a06e"),
		Ball:   lipgloss.Color("#33cc66"),
		Flash:  lipgloss.Color("#ffd166"),
		Accent: lipgloss.Color("#ef8354"),
		Text:   lipgloss.Color("#f4f1de"),
		Muted:  lipgloss.Color("#7a6f5d"),
		Warn:   lipgloss.Color("#ff6b6b"),
	}

	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Rim:    lipgloss.Color("#ff00ff"),
		Ball:   lipgloss.Color("#00ffff"),
		Flash:  lipgloss.Color("#ffff00"),
		Accent: lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666666"),
		Warn:   lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Rim:    lipgloss.Color("#00cc00"),
		Ball:   lipgloss.Color("#88ff88"),
		Flash:  lipgloss.Color("#ffff00"),
		Accent: lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Warn:   lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Rim:    lipgloss.Color("#0077be"),
		Ball:   lipgloss.Color("#00ff88"),
		Flash:  lipgloss.Color("#ffd700"),
		Accent: lipgloss.Color("#00a8cc"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
		Warn:   lipgloss.Color("#ff4444"),
	}

	// Themes lists the themes in cycling order; the first is the default.
	Themes = []Theme{
		ThemeMarimba,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after name in cycling order.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
