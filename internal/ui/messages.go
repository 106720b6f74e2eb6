package ui

import (
	"context"
	"time"

	"github.com/adriangreen/tm-dash/internal/config"
	"github.com/adriangreen/tm-dash/internal/tasks"
	tea "github.com/charmbracelet/bubbletea"
)

// flashDuration is how long a status message stays in the status bar
const flashDuration = 4 * time.Second

// TasksLoadedMsg is sent when a fetch of the task list finished
type TasksLoadedMsg struct {
	Err error
}

// TasksReloadedMsg is sent when the service signals that the store was replaced
type TasksReloadedMsg struct{}

// ProfileLoadedMsg carries the user profile for the greeting
type ProfileLoadedMsg struct {
	Profile tasks.UserProfile
	Err     error
}

// ConfigReloadedMsg is sent when the config file has been reloaded from disk
type ConfigReloadedMsg struct{}

// WatcherErrorMsg is sent when the config watcher or a reload fails
type WatcherErrorMsg struct {
	Err error
}

// TaskCreatedMsg is sent when the server confirmed a new task
type TaskCreatedMsg struct {
	Task tasks.Task
}

// TaskUpdatedMsg is sent when the server confirmed a patch
type TaskUpdatedMsg struct {
	Op   string
	Task tasks.Task
}

// TaskRemovedMsg is sent when the server confirmed a delete
type TaskRemovedMsg struct {
	ID    string
	Title string
}

// MutationFailedMsg is sent when a write failed. The store is unchanged.
type MutationFailedMsg struct {
	Op     string
	TaskID string
	Err    error
}

// flashExpiredMsg clears the status message with the matching sequence
type flashExpiredMsg struct {
	seq int
}

// LoadTasksCmd fetches the task list and returns a TasksLoadedMsg
func LoadTasksCmd(ctx context.Context, service TaskService) tea.Cmd {
	return func() tea.Msg {
		return TasksLoadedMsg{Err: service.Refresh(ctx)}
	}
}

// LoadProfileCmd fetches the user profile
func LoadProfileCmd(ctx context.Context, service TaskService) tea.Cmd {
	return func() tea.Msg {
		profile, err := service.Profile(ctx)
		return ProfileLoadedMsg{Profile: profile, Err: err}
	}
}

// CreateTaskCmd submits a draft
func CreateTaskCmd(ctx context.Context, service TaskService, draft tasks.Draft) tea.Cmd {
	return func() tea.Msg {
		created, err := service.Create(ctx, draft)
		if err != nil {
			return MutationFailedMsg{Op: "create", Err: err}
		}
		return TaskCreatedMsg{Task: created}
	}
}

// ToggleTaskCmd flips a task's completion
func ToggleTaskCmd(ctx context.Context, service TaskService, id string) tea.Cmd {
	return func() tea.Msg {
		updated, err := service.ToggleCompletion(ctx, id)
		if err != nil {
			return MutationFailedMsg{Op: "toggle", TaskID: id, Err: err}
		}
		return TaskUpdatedMsg{Op: "toggle", Task: updated}
	}
}

// UpdateTaskCmd sends a partial edit
func UpdateTaskCmd(ctx context.Context, service TaskService, id string, patch tasks.Patch) tea.Cmd {
	return func() tea.Msg {
		updated, err := service.Update(ctx, id, patch)
		if err != nil {
			return MutationFailedMsg{Op: "update", TaskID: id, Err: err}
		}
		return TaskUpdatedMsg{Op: "update", Task: updated}
	}
}

// RemoveTaskCmd deletes a task
func RemoveTaskCmd(ctx context.Context, service TaskService, id, title string) tea.Cmd {
	return func() tea.Msg {
		if err := service.Remove(ctx, id); err != nil {
			return MutationFailedMsg{Op: "delete", TaskID: id, Err: err}
		}
		return TaskRemovedMsg{ID: id, Title: title}
	}
}

// WaitForTasksReload returns a command that waits for the store to be
// replaced and sends a TasksReloadedMsg when that happens
func WaitForTasksReload(service TaskService) tea.Cmd {
	return func() tea.Msg {
		<-service.ReloadEvents()
		return TasksReloadedMsg{}
	}
}

// WaitForConfigReload returns a command that waits for config to be reloaded
// and sends a ConfigReloadedMsg when that happens
func WaitForConfigReload(manager *config.ConfigManager) tea.Cmd {
	if manager == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-manager.ReloadEvents():
			return ConfigReloadedMsg{}
		case err := <-manager.Errors():
			return WatcherErrorMsg{Err: err}
		}
	}
}

func expireFlash(seq int) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

// opTitle names a failed operation for the user
func opTitle(op string) string {
	switch op {
	case "create":
		return "Could not add task"
	case "toggle":
		return "Could not update task"
	case "update":
		return "Could not save changes"
	case "delete":
		return "Could not delete task"
	case "refresh":
		return "Could not load tasks"
	default:
		return "Something went wrong"
	}
}
