package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Form field order
const (
	fieldTitle = iota
	fieldProject
	fieldDueDate
	fieldDueTime
	fieldLocation
	fieldCategory
	fieldTag
	fieldImportant
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title", "Project", "Due date", "Due time", "Location", "Category", "Tag", "Important",
}

// TaskFormModel collects a draft task. It never talks to the service itself;
// the app turns a submitted form into a CreateTaskCmd.
type TaskFormModel struct {
	inputs    []textinput.Model
	important bool
	focus     int
	err       string
	submitted bool
	cancelled bool
	registry  *tasks.Registry
}

// NewTaskFormModel creates an empty form. project pre-fills the project field.
func NewTaskFormModel(registry *tasks.Registry, project string) *TaskFormModel {
	f := &TaskFormModel{registry: registry}
	f.inputs = make([]textinput.Model, fieldImportant)
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[fieldTitle].Placeholder = "What needs doing?"
	f.inputs[fieldProject].Placeholder = projectHint(registry)
	f.inputs[fieldProject].SetValue(project)
	f.inputs[fieldDueDate].Placeholder = "YYYY-MM-DD"
	f.inputs[fieldDueDate].CharLimit = 10
	f.inputs[fieldDueTime].Placeholder = "HH:MM"
	f.inputs[fieldDueTime].CharLimit = 5
	f.inputs[fieldTitle].Focus()
	return f
}

func projectHint(registry *tasks.Registry) string {
	var ids []string
	for _, p := range registry.Projects() {
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return "project id"
	}
	return strings.Join(ids, ", ")
}

// Update handles keys for the focused field
func (f *TaskFormModel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "esc":
		f.cancelled = true
		return nil
	case "ctrl+s":
		f.submit()
		return nil
	case "tab", "down":
		return f.setFocus((f.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return f.setFocus((f.focus + fieldCount - 1) % fieldCount)
	case "enter":
		if f.focus == fieldCount-1 {
			f.submit()
			return nil
		}
		return f.setFocus(f.focus + 1)
	}

	if f.focus == fieldImportant {
		switch keyMsg.String() {
		case " ", "y", "n", "left", "right":
			f.important = !f.important
		}
		return nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return cmd
}

func (f *TaskFormModel) setFocus(idx int) tea.Cmd {
	if f.focus < len(f.inputs) {
		f.inputs[f.focus].Blur()
	}
	f.focus = idx
	if idx < len(f.inputs) {
		return f.inputs[idx].Focus()
	}
	return nil
}

func (f *TaskFormModel) submit() {
	if _, err := f.Draft(); err != nil {
		f.err = err.Error()
		return
	}
	f.submitted = true
}

// Draft builds and validates the draft from the current field values
func (f *TaskFormModel) Draft() (tasks.Draft, error) {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	draft := tasks.Draft{
		Title:     value(fieldTitle),
		Project:   value(fieldProject),
		Location:  value(fieldLocation),
		Category:  value(fieldCategory),
		Tag:       value(fieldTag),
		DueTime:   value(fieldDueTime),
		Important: f.important,
	}

	if date := value(fieldDueDate); date != "" {
		due, err := tasks.ParseDueDate(date)
		if err != nil {
			return tasks.Draft{}, err
		}
		draft.DueDate = &due
	}

	if draft.Project != "" {
		if _, ok := f.registry.Get(draft.Project); !ok {
			return tasks.Draft{}, fmt.Errorf("unknown project %q", draft.Project)
		}
	}

	resolved, err := draft.Resolve()
	if errors.Is(err, tasks.ErrEmptyTitle) {
		return tasks.Draft{}, errors.New("title is required")
	}
	return resolved, err
}

// Submitted reports whether the form was accepted
func (f *TaskFormModel) Submitted() bool { return f.submitted }

// Cancelled reports whether the form was dismissed
func (f *TaskFormModel) Cancelled() bool { return f.cancelled }

// View renders the form inside a bordered box
func (f *TaskFormModel) View(styles *Styles, width int) string {
	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render("New task"))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		label := fmt.Sprintf("%-10s", fieldLabels[i])
		if i == f.focus {
			label = styles.TaskSelected.Render(label)
		} else {
			label = styles.Subtle.Render(label)
		}

		var field string
		if i == fieldImportant {
			mark := "[ ]"
			if f.important {
				mark = "[★]"
			}
			field = mark + styles.Subtle.Render("  space to toggle")
		} else {
			field = f.inputs[i].View()
		}
		b.WriteString(label + " " + field + "\n")
	}

	if f.err != "" {
		b.WriteString("\n" + styles.Error.Render(f.err) + "\n")
	}
	b.WriteString("\n" + styles.Subtle.Render("tab: next field • enter on last field or ctrl+s: save • esc: cancel"))

	boxWidth := width - 4
	if boxWidth > 72 {
		boxWidth = 72
	}
	return styles.PanelBorder.Padding(1, 2).Width(boxWidth).Render(b.String())
}
