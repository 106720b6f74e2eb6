package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by Open
const (
	BackendBadger = "badger"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// activityPrefix namespaces per-task activity entries
const activityPrefix = "activity:"

// Journal records confirmed task mutations, one list of entries per task
type Journal struct {
	store Store
}

// New wraps an existing store
func New(store Store) *Journal {
	return &Journal{store: store}
}

// Open creates a journal with the named backend. The path is a directory
// for badger and a JSON file for the file backend; memory ignores it.
func Open(backend, path string) (*Journal, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendBadger, "":
		if path == "" {
			return nil, errors.New("badger journal requires a path")
		}
		store, err := OpenBadger(path)
		if err != nil {
			return nil, err
		}
		return New(store), nil
	case BackendFile:
		store, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		return New(store), nil
	case BackendMemory:
		store, _ := OpenFile("")
		return New(store), nil
	default:
		return nil, fmt.Errorf("unknown journal backend %q", backend)
	}
}

// LogTaskActivity appends an entry to the task's activity list
func (j *Journal) LogTaskActivity(ctx context.Context, taskID, activity string) error {
	if taskID == "" {
		return ErrKeyEmpty
	}
	key := activityPrefix + taskID

	var entries []string
	existing, err := j.store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	if existing != nil {
		if err := json.Unmarshal(existing, &entries); err != nil {
			// Corrupt entry, start fresh
			entries = nil
		}
	}

	entries = append(entries, activity)
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return j.store.Put(ctx, key, data)
}

// Entries returns the activity list of a task, oldest first
func (j *Journal) Entries(ctx context.Context, taskID string) ([]string, error) {
	data, err := j.store.Get(ctx, activityPrefix+taskID)
	if errors.Is(err, ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode journal entries for %s: %w", taskID, err)
	}
	return entries, nil
}

// TaskIDs lists every task with journal entries
func (j *Journal) TaskIDs(ctx context.Context) ([]string, error) {
	keys, err := j.store.Keys(ctx, activityPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, activityPrefix))
	}
	return ids, nil
}

// Forget drops a task's entries
func (j *Journal) Forget(ctx context.Context, taskID string) error {
	return j.store.Delete(ctx, activityPrefix+taskID)
}

// collector is implemented by stores that reclaim space in the background
type collector interface {
	CollectGarbage(ctx context.Context, every time.Duration)
}

// RunMaintenance runs the store's background cleanup until ctx is done.
// Stores without one return immediately.
func (j *Journal) RunMaintenance(ctx context.Context, every time.Duration) {
	if c, ok := j.store.(collector); ok {
		c.CollectGarbage(ctx, every)
	}
}

// Close shuts down the backend
func (j *Journal) Close() error {
	return j.store.Close()
}
