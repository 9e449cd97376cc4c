package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme and styles for kdesk's terminal output
type Theme struct {
	Name string

	// Core colors
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Accent     lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor

	// Component styles
	Table  TableStyles
	Title  lipgloss.Style
	Header lipgloss.Style
	Status lipgloss.Style
}

// TableStyles defines styles for table output
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	// Active marks the selected context or active kubeconfig
	Active lipgloss.Style
}

// palette is the per-theme input; styles are derived the same way for all
type palette struct {
	primary, secondary, accent, foreground, muted lipgloss.AdaptiveColor
	err, success, warning, border                lipgloss.AdaptiveColor
}

func newTheme(name string, p palette) *Theme {
	t := &Theme{
		Name:       name,
		Primary:    p.primary,
		Secondary:  p.secondary,
		Accent:     p.accent,
		Foreground: p.foreground,
		Muted:      p.muted,
		Error:      p.err,
		Success:    p.success,
		Warning:    p.warning,
		Border:     p.border,
	}

	t.Table.Header = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		PaddingLeft(1).
		PaddingRight(1)

	t.Table.Cell = lipgloss.NewStyle().
		Foreground(t.Foreground).
		PaddingLeft(1).
		PaddingRight(1)

	t.Table.Active = t.Table.Cell.
		Foreground(t.Secondary).
		Bold(true)

	t.Title = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.Header = lipgloss.NewStyle().
		Foreground(t.Accent)

	t.Status = lipgloss.NewStyle().
		Foreground(t.Muted)

	return t
}

// ThemeCharm returns the default Charm theme
func ThemeCharm() *Theme {
	return newTheme("charm", palette{
		primary:    lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"},
		secondary:  lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"},
		accent:     lipgloss.AdaptiveColor{Light: "#F780E2", Dark: "#F780E2"},
		foreground: lipgloss.AdaptiveColor{Light: "235", Dark: "252"},
		muted:      lipgloss.AdaptiveColor{Light: "243", Dark: "243"},
		err:        lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"},
		success:    lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"},
		warning:    lipgloss.AdaptiveColor{Light: "#FFAA00", Dark: "#FFAA00"},
		border:     lipgloss.AdaptiveColor{Light: "240", Dark: "240"},
	})
}

// ThemeDracula returns a Dracula-inspired theme
func ThemeDracula() *Theme {
	return newTheme("dracula", palette{
		primary:    lipgloss.AdaptiveColor{Light: "#bd93f9", Dark: "#bd93f9"},
		secondary:  lipgloss.AdaptiveColor{Light: "#8be9fd", Dark: "#8be9fd"},
		accent:     lipgloss.AdaptiveColor{Light: "#ff79c6", Dark: "#ff79c6"},
		foreground: lipgloss.AdaptiveColor{Light: "#282a36", Dark: "#f8f8f2"},
		muted:      lipgloss.AdaptiveColor{Light: "#6272a4", Dark: "#6272a4"},
		err:        lipgloss.AdaptiveColor{Light: "#ff5555", Dark: "#ff5555"},
		success:    lipgloss.AdaptiveColor{Light: "#50fa7b", Dark: "#50fa7b"},
		warning:    lipgloss.AdaptiveColor{Light: "#f1fa8c", Dark: "#f1fa8c"},
		border:     lipgloss.AdaptiveColor{Light: "61", Dark: "61"},
	})
}

// ThemeNord returns a Nord-inspired theme
func ThemeNord() *Theme {
	return newTheme("nord", palette{
		primary:    lipgloss.AdaptiveColor{Light: "#5e81ac", Dark: "#88c0d0"},
		secondary:  lipgloss.AdaptiveColor{Light: "#8fbcbb", Dark: "#8fbcbb"},
		accent:     lipgloss.AdaptiveColor{Light: "#b48ead", Dark: "#b48ead"},
		foreground: lipgloss.AdaptiveColor{Light: "#2e3440", Dark: "#eceff4"},
		muted:      lipgloss.AdaptiveColor{Light: "#4c566a", Dark: "#4c566a"},
		err:        lipgloss.AdaptiveColor{Light: "#bf616a", Dark: "#bf616a"},
		success:    lipgloss.AdaptiveColor{Light: "#a3be8c", Dark: "#a3be8c"},
		warning:    lipgloss.AdaptiveColor{Light: "#ebcb8b", Dark: "#ebcb8b"},
		border:     lipgloss.AdaptiveColor{Light: "#d8dee9", Dark: "#3b4252"},
	})
}

// ThemeGruvbox returns a Gruvbox-inspired theme
func ThemeGruvbox() *Theme {
	return newTheme("gruvbox", palette{
		primary:    lipgloss.AdaptiveColor{Light: "#af3a03", Dark: "#fe8019"},
		secondary:  lipgloss.AdaptiveColor{Light: "#79740e", Dark: "#b8bb26"},
		accent:     lipgloss.AdaptiveColor{Light: "#8f3f71", Dark: "#d3869b"},
		foreground: lipgloss.AdaptiveColor{Light: "#3c3836", Dark: "#ebdbb2"},
		muted:      lipgloss.AdaptiveColor{Light: "#928374", Dark: "#928374"},
		err:        lipgloss.AdaptiveColor{Light: "#9d0006", Dark: "#fb4934"},
		success:    lipgloss.AdaptiveColor{Light: "#79740e", Dark: "#b8bb26"},
		warning:    lipgloss.AdaptiveColor{Light: "#b57614", Dark: "#fabd2f"},
		border:     lipgloss.AdaptiveColor{Light: "#d5c4a1", Dark: "#504945"},
	})
}

// ThemeTokyoNight returns a Tokyo Night-inspired theme
func ThemeTokyoNight() *Theme {
	return newTheme("tokyo-night", palette{
		primary:    lipgloss.AdaptiveColor{Light: "#2e7de9", Dark: "#7aa2f7"},
		secondary:  lipgloss.AdaptiveColor{Light: "#007197", Dark: "#7dcfff"},
		accent:     lipgloss.AdaptiveColor{Light: "#9854f1", Dark: "#bb9af7"},
		foreground: lipgloss.AdaptiveColor{Light: "#3760bf", Dark: "#c0caf5"},
		muted:      lipgloss.AdaptiveColor{Light: "#848cb5", Dark: "#565f89"},
		err:        lipgloss.AdaptiveColor{Light: "#f52a65", Dark: "#f7768e"},
		success:    lipgloss.AdaptiveColor{Light: "#587539", Dark: "#9ece6a"},
		warning:    lipgloss.AdaptiveColor{Light: "#8c6c3e", Dark: "#e0af68"},
		border:     lipgloss.AdaptiveColor{Light: "#a8aecb", Dark: "#3b4261"},
	})
}

// GetTheme returns a theme by name, falling back to charm
func GetTheme(name string) *Theme {
	switch name {
	case "dracula":
		return ThemeDracula()
	case "nord":
		return ThemeNord()
	case "gruvbox":
		return ThemeGruvbox()
	case "tokyo-night":
		return ThemeTokyoNight()
	default:
		return ThemeCharm()
	}
}

// AvailableThemes returns a list of available theme names
func AvailableThemes() []string {
	return []string{"charm", "dracula", "nord", "gruvbox", "tokyo-night"}
}
