package ui

import (
	"context"
	"time"

	"github.com/adriangreen/tm-dash/internal/tasks"
)

// TaskService defines the subset of tasks.Service behavior required by the UI.
type TaskService interface {
	Refresh(ctx context.Context) error
	Create(ctx context.Context, draft tasks.Draft) (tasks.Task, error)
	ToggleCompletion(ctx context.Context, id string) (tasks.Task, error)
	Update(ctx context.Context, id string, patch tasks.Patch) (tasks.Task, error)
	Remove(ctx context.Context, id string) error
	Profile(ctx context.Context) (tasks.UserProfile, error)

	Store() *tasks.Store
	Selector() *tasks.Selector
	Registry() *tasks.Registry
	Visible() []tasks.Task
	Counters() tasks.Counters
	GlobalCounters() tasks.Counters
	Projects() []tasks.Project

	Begin(id string) bool
	Pending(id string) bool
	LastError() error
	Loaded() bool
	Fetching() bool
	ReloadEvents() <-chan struct{}
	Now() time.Time
}

var _ TaskService = (*tasks.Service)(nil)
