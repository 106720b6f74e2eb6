package ui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/adriangreen/tm-dash/internal/config"
	"github.com/adriangreen/tm-dash/internal/remote"
	"github.com/adriangreen/tm-dash/internal/tasks"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmDialog(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		done    bool
		confirm bool
	}{
		{"enter defaults to cancel", []string{"enter"}, true, false},
		{"tab then enter confirms", []string{"tab", "enter"}, true, true},
		{"y confirms", []string{"y"}, true, true},
		{"n cancels", []string{"n"}, true, false},
		{"esc cancels", []string{"esc"}, true, false},
		{"other keys are ignored", []string{"q", "x"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewConfirmDialogModel("Delete?", "Delete", "Cancel", 80, 24).ForTask("7")
			for _, k := range tt.keys {
				d.Update(keyMsg(k))
			}
			assert.Equal(t, tt.done, d.Done())
			assert.Equal(t, tt.confirm, d.Result())
			assert.Equal(t, "7", d.TaskID())
		})
	}
}

func TestConfirmDialog_View(t *testing.T) {
	d := NewConfirmDialogModel("Delete \"Lab report\"?", "Delete", "Cancel", 80, 24)
	d.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := d.View()
	assert.Contains(t, view, "Lab report")
	assert.Contains(t, view, "Delete")
	assert.Contains(t, view, "Cancel")
	assert.Equal(t, "", d.TaskID())
}

func TestActionMenu(t *testing.T) {
	var menu actionMenu
	assert.Equal(t, actionToggle, menu.selected())

	menu.move(1)
	assert.Equal(t, actionImportant, menu.selected())
	menu.move(-2)
	assert.Equal(t, actionClose, menu.selected(), "moving up from the top wraps")
	menu.move(1)
	assert.Equal(t, actionToggle, menu.selected(), "moving down from the bottom wraps")

	open := menu.entries(tasks.Task{Title: "a"})
	assert.Equal(t, []string{"Mark as done", "Mark as important", "Delete…", "Close"}, open)

	done := menu.entries(tasks.Task{Title: "a", Completed: true, Important: true})
	assert.Equal(t, "Mark as not done", done[0])
	assert.Equal(t, "Remove important flag", done[1])

	view := menu.view(NewStyles(config.ThemeConfig{}), tasks.Task{Title: "a"})
	assert.Contains(t, view, "› Mark as done")
}

func newForm(t *testing.T, fields map[int]string) *TaskFormModel {
	t.Helper()
	f := NewTaskFormModel(tasks.NewRegistry(tasks.DefaultProjects), "")
	for idx, value := range fields {
		f.inputs[idx].SetValue(value)
	}
	return f
}

func TestTaskForm_Draft(t *testing.T) {
	f := newForm(t, map[int]string{
		fieldTitle:    "  Lab report ",
		fieldProject:  "school",
		fieldDueDate:  "2026-03-15",
		fieldDueTime:  "09:30",
		fieldLocation: "Library",
		fieldCategory: "writing",
		fieldTag:      "uni",
	})
	f.important = true

	draft, err := f.Draft()
	require.NoError(t, err)
	assert.Equal(t, "Lab report", draft.Title)
	assert.Equal(t, "school", draft.Project)
	assert.Equal(t, "Library", draft.Location)
	assert.Equal(t, "writing", draft.Category)
	assert.Equal(t, "uni", draft.Tag)
	assert.True(t, draft.Important)
	assert.False(t, draft.Completed)
	require.NotNil(t, draft.DueDate)
	assert.Equal(t, time.Date(2026, 3, 15, 9, 30, 0, 0, time.Local), *draft.DueDate)
}

func TestTaskForm_Validation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[int]string
		want   string
	}{
		{"missing title", map[int]string{fieldTitle: "   "}, "title is required"},
		{"bad date", map[int]string{fieldTitle: "a", fieldDueDate: "tomorrow"}, "invalid due date"},
		{"unknown project", map[int]string{fieldTitle: "a", fieldProject: "work"}, `unknown project "work"`},
		{"time without date", map[int]string{fieldTitle: "a", fieldDueTime: "10:00"}, "without a due date"},
		{"bad time", map[int]string{fieldTitle: "a", fieldDueDate: "2026-03-15", fieldDueTime: "25:99"}, "invalid due time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newForm(t, tt.fields).Draft()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTaskForm_Keys(t *testing.T) {
	f := NewTaskFormModel(tasks.NewRegistry(tasks.DefaultProjects), "home")
	assert.Equal(t, "home", f.inputs[fieldProject].Value())

	f.Update(keyMsg("Call plumber"))
	assert.Equal(t, "Call plumber", f.inputs[fieldTitle].Value())

	// Walk to the important checkbox and toggle it
	for i := 0; i < fieldImportant; i++ {
		f.Update(keyMsg("tab"))
	}
	assert.Equal(t, fieldImportant, f.focus)
	f.Update(keyMsg("space"))
	assert.True(t, f.important)

	// Enter on the last field submits
	f.Update(keyMsg("enter"))
	assert.True(t, f.Submitted())
	assert.False(t, f.Cancelled())

	g := NewTaskFormModel(nil, "")
	g.Update(keyMsg("shift+tab"))
	assert.Equal(t, fieldImportant, g.focus, "shift+tab wraps to the last field")
	g.Update(keyMsg("esc"))
	assert.True(t, g.Cancelled())
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
	}{
		{"network", fmt.Errorf("list: %w", &remote.NetworkError{Op: "GET /tasks/", Err: errors.New("connection refused")}), ErrorCategoryNetwork},
		{"rejected", fmt.Errorf("create: %w", &remote.RejectionError{StatusCode: 500}), ErrorCategoryRemote},
		{"malformed", &remote.MalformedError{Err: errors.New("missing id")}, ErrorCategoryParsing},
		{"empty title", tasks.ErrEmptyTitle, ErrorCategoryValidation},
		{"unknown task", fmt.Errorf("toggle 9: %w", tasks.ErrTaskNotFound), ErrorCategoryValidation},
		{"other", errors.New("boom"), ErrorCategoryOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError("Could not add task", tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, "Could not add task", appErr.Title)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}

	assert.Nil(t, FromError("x", nil))
}

func TestAppError_Messages(t *testing.T) {
	appErr := NewNetworkError("Could not load tasks", "The task server could not be reached.", nil).
		WithDetails("dial tcp 127.0.0.1:8000").
		WithRecoveryHints("Press r to retry")

	assert.Contains(t, appErr.GetDisplayMessage(), "dial tcp")
	assert.Contains(t, appErr.GetRecoveryMessage(), "1. Press r to retry")
	assert.Equal(t, "Please try again.", NewOperationError("a", "b", nil).GetRecoveryMessage())

	rejected := FromError("Could not delete task", &remote.RejectionError{StatusCode: 409})
	assert.Contains(t, rejected.Message, "status 409")
	assert.Contains(t, rejected.GetRecoveryMessage(), "Press r to reload the task list")
}

func TestFormatDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		due  time.Time
		want string
	}{
		{time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "today"},
		{time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC), "today 18:30"},
		{time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), "tomorrow"},
		{time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC), "Apr 2"},
		{time.Date(2027, 1, 5, 9, 0, 0, 0, time.UTC), "Jan 5 2027"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDue(tt.due, now))
	}
}
