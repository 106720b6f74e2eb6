package ui

import (
	"github.com/adriangreen/tm-dash/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// Base palette; theme colors from the config override the accents
const (
	ColorBorder    = "#555555"
	ColorText      = "#FFFFFF"
	ColorSubtle    = "#666666"
	ColorHighlight = "#00FFFF"
	ColorKeyBg     = "#222222"
)

// Styles contains all the lipgloss styles for the TUI
type Styles struct {
	// Task states
	Open      lipgloss.Style
	Done      lipgloss.Style
	Important lipgloss.Style
	Due       lipgloss.Style
	Overdue   lipgloss.Style

	// Layout styles
	Header    lipgloss.Style
	StatusBar lipgloss.Style

	// Panel styles
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	PanelBorder lipgloss.Style

	// Sidebar styles
	SidebarItem   lipgloss.Style
	SidebarActive lipgloss.Style
	Badge         lipgloss.Style

	// Task list styles
	TaskSelected   lipgloss.Style
	TaskUnselected lipgloss.Style
	Chip           lipgloss.Style
	MenuItem       lipgloss.Style
	MenuActive     lipgloss.Style

	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Subtle   lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style
	Info     lipgloss.Style
	Key      lipgloss.Style
}

// NewStyles creates the styles for a theme. Empty theme colors keep the defaults.
func NewStyles(theme config.ThemeConfig) *Styles {
	primary := pickColor(theme.PrimaryColor, "#7d56f4")
	accent := pickColor(theme.AccentColor, "#F780E2")
	success := pickColor(theme.SuccessColor, "#04B575")
	errColor := pickColor(theme.ErrorColor, "#EF4146")
	warning := pickColor(theme.WarningColor, "#FF9800")

	return &Styles{
		Open:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorText)),
		Done:      lipgloss.NewStyle().Foreground(success).Strikethrough(true),
		Important: lipgloss.NewStyle().Foreground(warning).Bold(true),
		Due:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSubtle)),
		Overdue:   lipgloss.NewStyle().Foreground(errColor),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorText)).
			Background(primary).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)).
			Background(lipgloss.Color(ColorKeyBg)).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1),

		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		PanelBorder: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primary),

		SidebarItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)).
			PaddingLeft(1),

		SidebarActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)).
			Background(primary).
			Bold(true).
			PaddingLeft(1),

		Badge: lipgloss.NewStyle().
			Foreground(accent),

		TaskSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHighlight)).
			Bold(true),

		TaskUnselected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)),

		Chip: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)).
			Italic(true),

		MenuItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)).
			PaddingLeft(4),

		MenuActive: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			PaddingLeft(4),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorHighlight)),

		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)),

		Error: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(warning),

		Success: lipgloss.NewStyle().
			Foreground(success),

		Info: lipgloss.NewStyle().
			Foreground(primary),

		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHighlight)).
			Background(lipgloss.Color(ColorKeyBg)).
			Padding(0, 1).
			Bold(true),
	}
}

func pickColor(value, fallback string) lipgloss.Color {
	if value == "" {
		return lipgloss.Color(fallback)
	}
	return lipgloss.Color(value)
}

// TaskIcon returns the check mark for a task's completion state
func TaskIcon(completed bool) string {
	if completed {
		return "✓"
	}
	return "○"
}
