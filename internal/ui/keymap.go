package ui

import (
	"github.com/adriangreen/tm-dash/internal/config"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the TUI
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Views
	NextView    key.Binding
	PrevView    key.Binding
	Inbox       key.Binding
	Today       key.Binding
	Upcoming    key.Binding
	Important   key.Binding
	Completed   key.Binding
	NextProject key.Binding
	Search      key.Binding

	// Task operations
	Toggle          key.Binding
	ToggleImportant key.Binding
	Menu            key.Binding
	Delete          key.Binding
	Add             key.Binding
	Refresh         key.Binding

	// Panels
	ToggleSidebar key.Binding
	ToggleLog     key.Binding

	// Help and quit
	Help       key.Binding
	Quit       key.Binding
	Cancel     key.Binding
	Back       key.Binding
	ClearState key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first task"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last task"),
		),

		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		Inbox: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "inbox"),
		),
		Today: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "today"),
		),
		Upcoming: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "upcoming"),
		),
		Important: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "important"),
		),
		Completed: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "completed"),
		),
		NextProject: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next project"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle done"),
		),
		ToggleImportant: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "toggle important"),
		),
		Menu: key.NewBinding(
			key.WithKeys("enter", "m"),
			key.WithHelp("enter/m", "actions"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		ToggleSidebar: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle sidebar"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle log"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back/clear"),
		),
		ClearState: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear saved state"),
		),
	}
}

// NewKeyMap creates a KeyMap from configuration, falling back to defaults for missing keys
func NewKeyMap(cfg *config.Config) KeyMap {
	km := DefaultKeyMap()
	if cfg == nil || len(cfg.KeyBindings) == 0 {
		return km
	}

	override := func(target *key.Binding, name, desc string) {
		if k, ok := cfg.KeyBindings[name]; ok && k != "" {
			label := k
			if k == " " {
				label = "space"
			}
			*target = key.NewBinding(key.WithKeys(k), key.WithHelp(label, desc))
		}
	}

	override(&km.Quit, "quit", "quit")
	override(&km.Help, "help", "toggle help")
	override(&km.Refresh, "refresh", "refresh")
	override(&km.Search, "search", "search")
	override(&km.Add, "add", "add task")
	override(&km.Toggle, "toggle", "toggle done")
	override(&km.ToggleImportant, "important", "toggle important")
	override(&km.Menu, "menu", "actions")
	override(&km.Delete, "delete", "delete")
	override(&km.NextProject, "nextProject", "next project")
	override(&km.ToggleSidebar, "sidebar", "toggle sidebar")

	return km
}

// ShortHelp returns a short help text for the status bar
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.Toggle, k.Menu, k.Add, k.Search, k.Help, k.Quit}
}

// FullHelp returns the full help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.NextView, k.PrevView, k.NextProject, k.Search},
		{k.Inbox, k.Today, k.Upcoming, k.Important, k.Completed},
		{k.Toggle, k.ToggleImportant, k.Menu, k.Delete, k.Add, k.Refresh},
		{k.ToggleSidebar, k.ToggleLog},
		{k.Help, k.Back, k.Quit, k.Cancel, k.ClearState},
	}
}
