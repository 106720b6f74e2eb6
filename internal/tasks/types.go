package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors returned by the task service
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrEmptyTitle   = errors.New("task title cannot be empty")
	ErrNullTask     = errors.New("task record is null")
)

// Task represents a task record as returned by the remote store
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Location  string     `json:"location,omitempty"`
	Category  string     `json:"category,omitempty"`
	Tag       string     `json:"tag,omitempty"`
	Project   string     `json:"project,omitempty"`
	DueDate   *time.Time `json:"dueDate"`
	Completed bool       `json:"completed"`
	Important bool       `json:"important"`
}

// HasDueDate reports whether the task carries a due date
func (t *Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// UnmarshalJSON implements custom JSON unmarshaling to handle int or string IDs
// and the different date layouts the backend may emit.
func (t *Task) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrNullTask
	}

	// Define an intermediate type to avoid recursion
	type Alias Task
	aux := &struct {
		ID      interface{} `json:"id"`
		DueDate *string     `json:"dueDate"`
		Project interface{} `json:"project"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.ID = stringify(aux.ID)
	t.Project = stringify(aux.Project)

	t.DueDate = nil
	if aux.DueDate != nil && strings.TrimSpace(*aux.DueDate) != "" {
		due, err := ParseDueDate(*aux.DueDate)
		if err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
		t.DueDate = &due
	}

	return nil
}

// stringify converts the loosely typed identifiers the backend sends into strings
func stringify(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// dueDateLayouts lists accepted due date layouts, most specific first.
// Layouts without a zone are interpreted in local time.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses an ISO-8601 instant or calendar date
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for i, layout := range dueDateLayouts {
		var (
			due time.Time
			err error
		)
		if i == 0 {
			due, err = time.Parse(layout, s)
		} else {
			due, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return due, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

// Draft is a task without a server-assigned identifier, submitted for creation
type Draft struct {
	Title     string     `json:"title"`
	Location  string     `json:"location,omitempty"`
	Category  string     `json:"category,omitempty"`
	Tag       string     `json:"tag,omitempty"`
	Project   string     `json:"project,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	DueTime   string     `json:"-"`
	Completed bool       `json:"completed"`
	Important bool       `json:"important"`
}

// Resolve validates the draft and folds DueTime into DueDate.
// The returned draft always has Completed set to false.
func (d Draft) Resolve() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return Draft{}, ErrEmptyTitle
	}
	d.Completed = false

	if d.DueTime != "" {
		if d.DueDate == nil {
			return Draft{}, fmt.Errorf("due time %q given without a due date", d.DueTime)
		}
		clock, err := time.Parse("15:04", strings.TrimSpace(d.DueTime))
		if err != nil {
			return Draft{}, fmt.Errorf("invalid due time %q: %w", d.DueTime, err)
		}
		day := *d.DueDate
		due := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
		d.DueDate = &due
		d.DueTime = ""
	}

	return d, nil
}

// Patch is a partial task update. Only non-nil fields are sent.
type Patch struct {
	Title     *string    `json:"title,omitempty"`
	Location  *string    `json:"location,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Tag       *string    `json:"tag,omitempty"`
	Project   *string    `json:"project,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
	Important *bool      `json:"important,omitempty"`
}

// IsEmpty reports whether the patch would change nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Location == nil && p.Category == nil && p.Tag == nil &&
		p.Project == nil && p.DueDate == nil && p.Completed == nil && p.Important == nil
}

// CompletionPatch builds the patch used to toggle a task's completion
func CompletionPatch(completed bool) Patch {
	return Patch{Completed: &completed}
}

// Apply returns a copy of the task with the patch applied. Used by the
// development backend; the client itself always adopts the server record.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Tag != nil {
		t.Tag = *p.Tag
	}
	if p.Project != nil {
		t.Project = *p.Project
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Important != nil {
		t.Important = *p.Important
	}
	return t
}

// Project groups tasks. Count is a view artifact recomputed from the store.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UserProfile is the signed-in user as reported by the backend
type UserProfile struct {
	Name        string      `json:"name,omitempty"`
	Username    string      `json:"username,omitempty"`
	Email       string      `json:"email,omitempty"`
	Avatar      string      `json:"avatar,omitempty"`
	Preferences Preferences `json:"preferences"`
}

// Preferences holds the user's display preferences
type Preferences struct {
	DarkMode           bool `json:"darkMode"`
	EmailNotifications bool `json:"emailNotifications"`
	SoundEffects       bool `json:"soundEffects"`
}

// DisplayName returns the best available name for greeting the user
func (u UserProfile) DisplayName() string {
	switch {
	case strings.TrimSpace(u.Name) != "":
		return u.Name
	case strings.TrimSpace(u.Username) != "":
		return u.Username
	default:
		return "there"
	}
}
