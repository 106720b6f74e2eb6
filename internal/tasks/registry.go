package tasks

import (
	"strings"
	"sync"
)

// DefaultProjects is the project seed used when the config names none
var DefaultProjects = []Project{
	{ID: "school", Name: "School"},
	{ID: "home", Name: "Home"},
	{ID: "random", Name: "Random"},
	{ID: "friends", Name: "Friends"},
}

// Registry tracks the known projects. Counts are never stored; WithCounts
// recomputes them from a task snapshot.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	projects map[string]Project
}

// NewRegistry creates a registry seeded with the given projects.
// Blank IDs and duplicates are skipped; a blank name falls back to the ID.
func NewRegistry(seed []Project) *Registry {
	reg := &Registry{projects: make(map[string]Project)}
	for _, p := range seed {
		reg.Register(p)
	}
	return reg
}

// Register adds or renames a project. Returns false for blank IDs.
func (r *Registry) Register(p Project) bool {
	id := strings.TrimSpace(p.ID)
	if r == nil || id == "" {
		return false
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = id
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		r.order = append(r.order, id)
	}
	r.projects[id] = Project{ID: id, Name: name}
	return true
}

// Get returns a project by ID
func (r *Registry) Get(id string) (Project, bool) {
	if r == nil || id == "" {
		return Project{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	return p, ok
}

// Projects returns every project in registration order with zero counts
func (r *Registry) Projects() []Project {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.projects[id])
	}
	return out
}

// WithCounts returns every project with Count set to the number of tasks
// in the snapshot that reference it. Tasks pointing at unknown projects
// are ignored.
func (r *Registry) WithCounts(snapshot []Task) []Project {
	projects := r.Projects()
	if len(projects) == 0 {
		return projects
	}

	counts := make(map[string]int, len(projects))
	for i := range snapshot {
		if snapshot[i].Project != "" {
			counts[snapshot[i].Project]++
		}
	}
	for i := range projects {
		projects[i].Count = counts[projects[i].ID]
	}
	return projects
}

// Views returns a project view per registered project
func (r *Registry) Views() []View {
	projects := r.Projects()
	views := make([]View, 0, len(projects))
	for _, p := range projects {
		views = append(views, ProjectView(p.ID))
	}
	return views
}
