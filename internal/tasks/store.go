package tasks

import (
	"fmt"
	"sync"
)

// Store is the in-memory mirror of the remote task list. It keeps tasks in
// insertion order and provides O(1) lookup by ID.
type Store struct {
	// order holds task IDs in insertion order
	order []string

	// index provides O(1) lookup by task ID
	index map[string]Task

	// mu protects concurrent access; bubbletea runs commands on goroutines
	mu sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{index: make(map[string]Task)}
}

// ReplaceAll swaps the store contents for a freshly fetched list.
// For duplicate IDs the first record wins; later ones are reported.
func (s *Store) ReplaceAll(tasks []Task) []string {
	order, index, warnings := buildIndex(tasks)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = order
	s.index = index
	return warnings
}

// buildIndex creates the ordered ID list and lookup map for a task list
func buildIndex(tasks []Task) ([]string, map[string]Task, []string) {
	order := make([]string, 0, len(tasks))
	index := make(map[string]Task, len(tasks))
	var warnings []string

	for _, task := range tasks {
		if _, exists := index[task.ID]; exists {
			warnings = append(warnings, fmt.Sprintf("duplicate task ID found: %s", task.ID))
			continue
		}
		order = append(order, task.ID)
		index[task.ID] = task
	}
	return order, index, warnings
}

// Clear empties the store
func (s *Store) Clear() {
	s.ReplaceAll(nil)
}

// Insert appends a new task, or replaces it in place if the ID already exists
func (s *Store) Insert(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[task.ID]; !exists {
		s.order = append(s.order, task.ID)
	}
	s.index[task.ID] = task
}

// Replace swaps the record for an existing ID. Returns false if the ID is unknown.
func (s *Store) Replace(task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[task.ID]; !exists {
		return false
	}
	s.index[task.ID] = task
	return true
}

// Remove deletes a task by ID. Returns false if the ID is unknown.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[id]; !exists {
		return false
	}
	delete(s.index, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a task by ID
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.index[id]
	return task, ok
}

// Len returns the number of tasks held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// Snapshot returns a copy of all tasks in insertion order
func (s *Store) Snapshot() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.index[id])
	}
	return out
}
