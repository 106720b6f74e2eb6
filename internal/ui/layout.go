package ui

import (
	"fmt"
	"strings"

	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight    = 2
	statusBarHeight = 1
	panelPadding    = 2
	sidebarWidth    = 28
	minSidebarTotal = 70
	maxLogLines     = 200
)

// LayoutDimensions holds the calculated dimensions for each panel
type LayoutDimensions struct {
	Width  int
	Height int

	HeaderHeight int

	// Sidebar (left), zero width when hidden
	SidebarWidth  int
	SidebarHeight int

	// Task list (right of the sidebar)
	ListWidth  int
	ListHeight int

	// Log panel (bottom)
	LogWidth  int
	LogHeight int

	StatusBarHeight int
}

// calculateLayout computes the layout dimensions based on terminal size and panel visibility
func (m Model) calculateLayout() LayoutDimensions {
	layout := LayoutDimensions{
		Width:           m.width,
		Height:          m.height,
		HeaderHeight:    headerHeight,
		StatusBarHeight: statusBarHeight,
	}

	contentHeight := m.height - headerHeight - statusBarHeight
	if m.searchLineVisible() {
		contentHeight--
	}
	if contentHeight < 6 {
		contentHeight = 6
	}

	logHeight := 0
	if m.showLogPanel {
		logHeight = contentHeight / 3
		if logHeight < 4 {
			logHeight = 4
		}
	}

	mainHeight := contentHeight - logHeight
	if mainHeight < 4 {
		mainHeight = 4
	}

	side := 0
	if m.showSidebar && m.width >= minSidebarTotal {
		side = sidebarWidth
	}

	layout.SidebarWidth = side
	layout.SidebarHeight = mainHeight
	layout.ListWidth = m.width - side
	layout.ListHeight = mainHeight
	layout.LogWidth = m.width
	layout.LogHeight = logHeight
	return layout
}

// updateViewportSizes updates the viewport sizes based on current layout
func (m *Model) updateViewportSizes() {
	layout := m.calculateLayout()

	// Border and padding on both sides, plus one line for the panel title
	m.listViewport.Width = max(layout.ListWidth-panelPadding*2, 10)
	m.listViewport.Height = max(layout.ListHeight-panelPadding-1, 2)

	if m.showLogPanel {
		m.logViewport.Width = max(layout.LogWidth-panelPadding*2, 10)
		m.logViewport.Height = max(layout.LogHeight-panelPadding-1, 2)
	}

	m.updateListViewport()
}

func (m Model) searchLineVisible() bool {
	return m.mode == modeSearch || m.service.Selector().Search() != ""
}

// renderHeader renders the greeting and the counters for the active scope
func (m Model) renderHeader() string {
	now := m.service.Now()
	greeting := fmt.Sprintf("Hello, %s!", m.profile.DisplayName())
	date := now.Format("Monday, January 2")

	gap := m.width - lipgloss.Width(greeting) - lipgloss.Width(date) - 2
	if gap < 1 {
		gap = 1
	}
	titleLine := m.styles.Header.Width(m.width).Render(greeting + strings.Repeat(" ", gap) + date)

	counters := m.service.Counters()
	scope := "All tasks"
	if view := m.service.Selector().View(); view.IsProject() {
		scope = view.Title(m.service.Registry())
	}
	parts := []string{
		m.styles.Subtitle.Render(scope + ":"),
		m.styles.Info.Render(fmt.Sprintf("%d open", counters.Uncompleted)),
		m.styles.Success.Render(fmt.Sprintf("%d done", counters.Completed)),
		m.styles.Warning.Render(fmt.Sprintf("%d upcoming", counters.Upcoming)),
	}
	if m.busy() {
		parts = append(parts, m.spinner.View())
	}
	countsLine := lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(strings.Join(parts, "  "))

	header := titleLine + "\n" + countsLine
	if m.searchLineVisible() {
		header += "\n" + m.renderSearchLine()
	}
	return header
}

func (m Model) renderSearchLine() string {
	label := m.styles.Info.Render(" Search: ")
	if m.mode == modeSearch {
		hint := m.styles.Subtle.Render(" (enter to keep, esc to clear)")
		return label + m.searchInput.View() + hint
	}
	term := m.service.Selector().Search()
	return label + m.styles.Subtitle.Render(fmt.Sprintf("%q", term)) + m.styles.Subtle.Render(" (/ to edit, esc to clear)")
}

// sidebarEntry is one selectable line of the sidebar
type sidebarEntry struct {
	view  tasks.View
	label string
	badge int
}

// sidebarEntries lists the fixed views with badges, then the projects with counts
func (m Model) sidebarEntries() []sidebarEntry {
	snapshot := m.service.Store().Snapshot()
	now := m.service.Now()
	global := m.service.GlobalCounters()

	entries := []sidebarEntry{
		{view: tasks.InboxView(), label: "Inbox", badge: global.Uncompleted},
		{view: tasks.TodayView(), label: "Today", badge: len(tasks.SelectTasks(snapshot, tasks.TodayView(), "", now))},
		{view: tasks.UpcomingView(), label: "Upcoming", badge: global.Upcoming},
		{view: tasks.ImportantView(), label: "Important", badge: len(tasks.SelectTasks(snapshot, tasks.ImportantView(), "", now))},
		{view: tasks.CompletedView(), label: "Completed", badge: global.Completed},
	}
	for _, p := range m.service.Projects() {
		entries = append(entries, sidebarEntry{view: tasks.ProjectView(p.ID), label: p.Name, badge: p.Count})
	}
	return entries
}

// renderSidebar renders the view list and the projects
func (m Model) renderSidebar(layout LayoutDimensions) string {
	active := m.service.Selector().View()
	inner := layout.SidebarWidth - panelPadding*2

	var b strings.Builder
	b.WriteString(m.styles.PanelTitle.Render("Views"))
	b.WriteString("\n")

	for i, entry := range m.sidebarEntries() {
		if i == len(tasks.FixedViews()) {
			b.WriteString("\n")
			b.WriteString(m.styles.PanelTitle.Render("Projects"))
			b.WriteString("\n")
		}

		badge := m.styles.Badge.Render(fmt.Sprintf("%d", entry.badge))
		label := entry.label
		space := inner - 1 - lipgloss.Width(label) - lipgloss.Width(badge)
		if space < 1 {
			space = 1
		}
		line := label + strings.Repeat(" ", space) + badge

		style := m.styles.SidebarItem
		if entry.view == active {
			style = m.styles.SidebarActive
		}
		b.WriteString(style.Width(inner).Render(line))
		b.WriteString("\n")
	}

	return m.styles.Panel.
		Width(layout.SidebarWidth - 2).
		Height(layout.SidebarHeight - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

// renderStatusBar renders the bottom status bar with the flash message or key hints
func (m Model) renderStatusBar() string {
	switch {
	case m.flashErr != nil:
		msg := m.styles.Error.Render(m.flashErr.Title+": ") + m.flashErr.Message
		return m.styles.StatusBar.Width(m.width).Render(msg)
	case m.flash != "":
		return m.styles.StatusBar.Width(m.width).Render(m.styles.Success.Render(m.flash))
	}

	helpText := m.helpModel.ShortHelpView(m.keyMap.ShortHelp())
	return m.styles.StatusBar.Width(m.width).Render(helpText)
}

// renderLogPanel renders the activity log
func (m Model) renderLogPanel(layout LayoutDimensions) string {
	title := m.styles.PanelTitle.Render("Log")
	return m.styles.Panel.Width(layout.LogWidth - 2).Render(title + "\n" + m.logViewport.View())
}
