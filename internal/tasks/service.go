package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Remote is the subset of the backend API the service needs
type Remote interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, draft Draft) (Task, error)
	UpdateTask(ctx context.Context, id string, patch Patch) (Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetUser(ctx context.Context) (UserProfile, error)
}

// Journal records confirmed mutations
type Journal interface {
	LogTaskActivity(ctx context.Context, taskID, activity string) error
}

// Option configures a Service
type Option func(*Service)

// WithJournal attaches an activity journal
func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service coordinates mutations against the remote store and keeps the
// local Store reconciled with the server's answers. A failed write never
// leaves a partial change behind.
type Service struct {
	remote   Remote
	store    *Store
	selector *Selector
	registry *Registry
	journal  Journal
	log      logrus.FieldLogger
	now      func() time.Time

	// reloadChan signals when the store changed outside a direct call
	reloadChan chan struct{}

	// mu protects the fields below
	mu       sync.Mutex
	pending  map[string]bool
	lastErr  error
	loaded   bool
	fetching bool
}

// NewService creates a Service around an empty store
func NewService(remote Remote, registry *Registry, selector *Selector, opts ...Option) *Service {
	if registry == nil {
		registry = NewRegistry(DefaultProjects)
	}
	if selector == nil {
		selector = NewSelector(InboxView())
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	svc := &Service{
		remote:     remote,
		store:      NewStore(),
		selector:   selector,
		registry:   registry,
		log:        discard,
		now:        time.Now,
		reloadChan: make(chan struct{}, 1),
		pending:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Store returns the underlying task store
func (s *Service) Store() *Store { return s.store }

// Selector returns the view selector
func (s *Service) Selector() *Selector { return s.selector }

// Registry returns the project registry
func (s *Service) Registry() *Registry { return s.registry }

// Now returns the service clock's current time
func (s *Service) Now() time.Time { return s.now() }

// Refresh replaces the store with a full fetch. On failure the store is
// emptied and the error is kept for display.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.fetching = true
	s.mu.Unlock()

	start := time.Now()
	fetched, err := s.remote.ListTasks(ctx)

	s.mu.Lock()
	s.fetching = false
	s.loaded = true
	s.lastErr = err
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"op": "refresh", "duration": time.Since(start)})
	if err != nil {
		s.store.Clear()
		log.WithError(err).Error("failed to fetch tasks")
		s.notify()
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}

	for _, warning := range s.store.ReplaceAll(fetched) {
		log.Warn(warning)
	}
	log.WithField("count", len(fetched)).Info("tasks fetched")
	s.notify()
	return nil
}

// Create submits a draft and inserts the server's record
func (s *Service) Create(ctx context.Context, draft Draft) (Task, error) {
	resolved, err := draft.Resolve()
	if err != nil {
		return Task{}, err
	}

	start := time.Now()
	created, err := s.remote.CreateTask(ctx, resolved)
	log := s.log.WithFields(logrus.Fields{"op": "create", "duration": time.Since(start)})
	if err != nil {
		log.WithError(err).Error("failed to create task")
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.store.Insert(created)
	log.WithField("task_id", created.ID).Info("task created")
	s.record(ctx, created.ID, "created: "+created.Title)
	return created, nil
}

// ToggleCompletion flips a task's completed flag and adopts the server's
// returned record, not the locally flipped value.
func (s *Service) ToggleCompletion(ctx context.Context, id string) (Task, error) {
	defer s.setPending(id, false)

	current, ok := s.store.Get(id)
	if !ok {
		return Task{}, fmt.Errorf("toggle %s: %w", id, ErrTaskNotFound)
	}

	updated, err := s.patch(ctx, "toggle", id, CompletionPatch(!current.Completed))
	if err != nil {
		return Task{}, err
	}

	activity := "reopened"
	if updated.Completed {
		activity = "completed"
	}
	s.record(ctx, id, activity)
	return updated, nil
}

// Update sends a partial edit and adopts the server's returned record
func (s *Service) Update(ctx context.Context, id string, p Patch) (Task, error) {
	defer s.setPending(id, false)

	if _, ok := s.store.Get(id); !ok {
		return Task{}, fmt.Errorf("update %s: %w", id, ErrTaskNotFound)
	}
	if p.Title != nil && *p.Title == "" {
		return Task{}, ErrEmptyTitle
	}
	if p.IsEmpty() {
		task, _ := s.store.Get(id)
		return task, nil
	}

	updated, err := s.patch(ctx, "update", id, p)
	if err != nil {
		return Task{}, err
	}
	s.record(ctx, id, "updated")
	return updated, nil
}

// patch issues one PATCH and reconciles the store with the response
func (s *Service) patch(ctx context.Context, op, id string, p Patch) (Task, error) {
	s.setPending(id, true)

	start := time.Now()
	updated, err := s.remote.UpdateTask(ctx, id, p)
	log := s.log.WithFields(logrus.Fields{"op": op, "task_id": id, "duration": time.Since(start)})
	if err != nil {
		log.WithError(err).Error("failed to update task")
		return Task{}, fmt.Errorf("failed to update task %s: %w", id, err)
	}

	if !s.store.Replace(updated) {
		// Removed by a refresh while the write was in flight; the server
		// still has it, so keep the confirmed record.
		s.store.Insert(updated)
	}
	log.WithField("completed", updated.Completed).Info("task updated")
	return updated, nil
}

// Remove deletes a task remotely, then drops it from the store and closes
// its action menu.
func (s *Service) Remove(ctx context.Context, id string) error {
	defer s.setPending(id, false)

	if _, ok := s.store.Get(id); !ok {
		return fmt.Errorf("remove %s: %w", id, ErrTaskNotFound)
	}
	s.setPending(id, true)

	start := time.Now()
	err := s.remote.DeleteTask(ctx, id)
	log := s.log.WithFields(logrus.Fields{"op": "remove", "task_id": id, "duration": time.Since(start)})
	if err != nil {
		log.WithError(err).Error("failed to delete task")
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}

	s.store.Remove(id)
	s.selector.ForgetTask(id)
	log.Info("task deleted")
	s.record(ctx, id, "deleted")
	return nil
}

// Profile fetches the user profile
func (s *Service) Profile(ctx context.Context) (UserProfile, error) {
	profile, err := s.remote.GetUser(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to fetch user profile")
		return UserProfile{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return profile, nil
}

// Visible returns the tasks for the selector's current view and search
func (s *Service) Visible() []Task {
	return SelectTasks(s.store.Snapshot(), s.selector.View(), s.selector.Search(), s.now())
}

// Counters returns the navigation counters for the current view
func (s *Service) Counters() Counters {
	return Count(s.store.Snapshot(), s.selector.View(), s.now())
}

// GlobalCounters returns the counters over the whole store
func (s *Service) GlobalCounters() Counters {
	return Count(s.store.Snapshot(), InboxView(), s.now())
}

// Projects returns the registered projects with freshly computed counts
func (s *Service) Projects() []Project {
	return s.registry.WithCounts(s.store.Snapshot())
}

// Begin reserves id for a write about to be issued from another goroutine.
// It returns false when a write for id is already in flight. The reservation
// is released when the next ToggleCompletion, Update or Remove for id returns.
func (s *Service) Begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] {
		return false
	}
	s.pending[id] = true
	return true
}

// Pending reports whether a write for id is in flight
func (s *Service) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[id]
}

// LastError returns the error of the most recent fetch, if it failed
func (s *Service) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Loaded reports whether at least one fetch has finished
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Fetching reports whether a fetch is in flight
func (s *Service) Fetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching
}

// ReloadEvents returns a channel that signals when the store was refreshed
func (s *Service) ReloadEvents() <-chan struct{} {
	return s.reloadChan
}

func (s *Service) notify() {
	select {
	case s.reloadChan <- struct{}{}:
	default:
		// Channel full, reload notification already pending
	}
}

func (s *Service) setPending(id string, pending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pending {
		s.pending[id] = true
	} else {
		delete(s.pending, id)
	}
}

// record appends to the journal. Journal failures never fail the mutation.
func (s *Service) record(ctx context.Context, id, activity string) {
	if s.journal == nil {
		return
	}
	entry := fmt.Sprintf("%s %s", s.now().Format(time.RFC3339), activity)
	if err := s.journal.LogTaskActivity(ctx, id, entry); err != nil {
		s.log.WithError(err).WithField("task_id", id).Warn("failed to write journal entry")
	}
}
