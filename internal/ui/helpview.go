package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpEntry pairs a binding with its description in the overlay
type helpEntry struct {
	binding key.Binding
	desc    string
}

// renderHelpOverlay renders the full key reference in a centered box
func (m Model) renderHelpOverlay() string {
	sections := []struct {
		title   string
		entries []helpEntry
	}{
		{"Navigation", []helpEntry{
			{m.keyMap.Up, "Move up"},
			{m.keyMap.Down, "Move down"},
			{m.keyMap.PageUp, "Page up"},
			{m.keyMap.PageDown, "Page down"},
			{m.keyMap.Top, "First task"},
			{m.keyMap.Bottom, "Last task"},
		}},
		{"Views", []helpEntry{
			{m.keyMap.NextView, "Next view"},
			{m.keyMap.PrevView, "Previous view"},
			{m.keyMap.Inbox, "Inbox"},
			{m.keyMap.Today, "Today"},
			{m.keyMap.Upcoming, "Upcoming"},
			{m.keyMap.Important, "Important"},
			{m.keyMap.Completed, "Completed"},
			{m.keyMap.NextProject, "Next project"},
			{m.keyMap.Search, "Search title, location, category and tag"},
		}},
		{"Task Operations", []helpEntry{
			{m.keyMap.Toggle, "Mark done / not done"},
			{m.keyMap.ToggleImportant, "Flag as important"},
			{m.keyMap.Menu, "Open the task menu"},
			{m.keyMap.Delete, "Delete task"},
			{m.keyMap.Add, "Add a task"},
			{m.keyMap.Refresh, "Reload tasks from the server"},
		}},
		{"Panels", []helpEntry{
			{m.keyMap.ToggleSidebar, "Toggle sidebar"},
			{m.keyMap.ToggleLog, "Toggle activity log"},
		}},
		{"General", []helpEntry{
			{m.keyMap.Help, "Toggle this help"},
			{m.keyMap.Back, "Clear search / close"},
			{m.keyMap.ClearState, "Reset UI state"},
			{m.keyMap.Quit, "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("tm-dash Help"))
	b.WriteString("\n\n")

	for _, section := range sections {
		b.WriteString(m.styles.Subtitle.Render(section.title))
		b.WriteString("\n")
		for _, entry := range section.entries {
			b.WriteString("  " + m.renderBinding(entry.binding) + " - " + entry.desc + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Subtle.Render("Press '?' or 'esc' to close help"))

	helpWidth := 64
	if m.width > 0 && m.width < helpWidth+4 {
		helpWidth = m.width - 4
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(1, 2).
		Width(helpWidth).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderBinding renders a key binding's keys with a highlighted background
func (m Model) renderBinding(binding key.Binding) string {
	keys := binding.Help().Key
	if keys == "" {
		keys = strings.Join(binding.Keys(), "/")
	}
	if keys == " " {
		keys = "space"
	}
	return m.styles.Key.Render(keys)
}
