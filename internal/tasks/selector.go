package tasks

import "sync"

// Selector holds the active view, the search term and the task whose action
// menu is open. It never touches the Store.
type Selector struct {
	mu     sync.RWMutex
	view   View
	search string
	menuID string
}

// NewSelector creates a selector starting on the given view
func NewSelector(initial View) *Selector {
	return &Selector{view: initial}
}

// View returns the active view
func (s *Selector) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView switches the active view and closes any open action menu
func (s *Selector) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.menuID = ""
}

// Search returns the current search term
func (s *Selector) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// SetSearch replaces the search term
func (s *Selector) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// MenuTaskID returns the task whose action menu is open, or ""
func (s *Selector) MenuTaskID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.menuID
}

// OpenMenu opens the action menu for a task, closing any other
func (s *Selector) OpenMenu(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuID = id
}

// CloseMenu closes the action menu
func (s *Selector) CloseMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuID = ""
}

// MenuOpen reports whether the action menu is open for id
func (s *Selector) MenuOpen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id != "" && s.menuID == id
}

// ForgetTask drops any selection state tied to a removed task
func (s *Selector) ForgetTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.menuID == id {
		s.menuID = ""
	}
}
