package ui

import (
	"strings"

	"github.com/adriangreen/tm-dash/internal/tasks"
)

// menuAction is one entry of the per-task action menu
type menuAction int

const (
	actionToggle menuAction = iota
	actionImportant
	actionDelete
	actionClose
)

// actionMenu tracks the highlighted entry. Which task the menu belongs to
// lives in the tasks.Selector, so switching views closes it.
type actionMenu struct {
	cursor int
}

func (a *actionMenu) entries(task tasks.Task) []string {
	toggle := "Mark as done"
	if task.Completed {
		toggle = "Mark as not done"
	}
	important := "Mark as important"
	if task.Important {
		important = "Remove important flag"
	}
	return []string{toggle, important, "Delete…", "Close"}
}

func (a *actionMenu) move(delta int) {
	n := int(actionClose) + 1
	a.cursor = (a.cursor + delta + n) % n
}

func (a *actionMenu) selected() menuAction {
	return menuAction(a.cursor)
}

func (a *actionMenu) view(styles *Styles, task tasks.Task) string {
	var b strings.Builder
	for i, entry := range a.entries(task) {
		if i == a.cursor {
			b.WriteString(styles.MenuActive.Render("› " + entry))
		} else {
			b.WriteString(styles.MenuItem.Render("  " + entry))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
