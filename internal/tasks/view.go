package tasks

import (
	"strings"
)

// ViewKind enumerates the fixed task views plus the project-scoped view
type ViewKind int

const (
	ViewInbox ViewKind = iota
	ViewToday
	ViewUpcoming
	ViewImportant
	ViewCompleted
	ViewProject
)

// projectPrefix is the textual prefix of project-scoped views
const projectPrefix = "project-"

// View identifies which subset of tasks is shown. The zero value is the inbox.
type View struct {
	kind    ViewKind
	project string
}

// InboxView returns the default view (all uncompleted tasks)
func InboxView() View { return View{kind: ViewInbox} }

// TodayView returns the view of tasks due today
func TodayView() View { return View{kind: ViewToday} }

// UpcomingView returns the view of tasks due in the future
func UpcomingView() View { return View{kind: ViewUpcoming} }

// ImportantView returns the view of tasks flagged important
func ImportantView() View { return View{kind: ViewImportant} }

// CompletedView returns the view of completed tasks
func CompletedView() View { return View{kind: ViewCompleted} }

// ProjectView returns the view scoped to a single project
func ProjectView(projectID string) View {
	return View{kind: ViewProject, project: projectID}
}

// FixedViews lists the non-project views in sidebar order
func FixedViews() []View {
	return []View{InboxView(), TodayView(), UpcomingView(), ImportantView(), CompletedView()}
}

// Kind returns the view's tag
func (v View) Kind() ViewKind {
	return v.kind
}

// ProjectID returns the project identifier for project views, "" otherwise
func (v View) ProjectID() string {
	if v.kind != ViewProject {
		return ""
	}
	return v.project
}

// IsProject reports whether the view is project-scoped
func (v View) IsProject() bool {
	return v.kind == ViewProject
}

// String returns the textual form accepted by ParseView
func (v View) String() string {
	switch v.kind {
	case ViewToday:
		return "today"
	case ViewUpcoming:
		return "upcoming"
	case ViewImportant:
		return "important"
	case ViewCompleted:
		return "completed"
	case ViewProject:
		return projectPrefix + v.project
	default:
		return "inbox"
	}
}

// Title returns the heading shown above the task list
func (v View) Title(reg *Registry) string {
	switch v.kind {
	case ViewToday:
		return "Today"
	case ViewUpcoming:
		return "Upcoming"
	case ViewImportant:
		return "Important"
	case ViewCompleted:
		return "Completed"
	case ViewProject:
		if p, ok := reg.Get(v.project); ok {
			return p.Name
		}
		return "Project"
	default:
		return "Inbox"
	}
}

// ParseView converts a view name into a View.
// Unknown names fall back to the inbox view.
func ParseView(s string) View {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch lower {
	case "today":
		return TodayView()
	case "upcoming":
		return UpcomingView()
	case "important":
		return ImportantView()
	case "completed":
		return CompletedView()
	}

	for _, prefix := range []string{projectPrefix, "project:"} {
		if strings.HasPrefix(lower, prefix) {
			if id := s[len(prefix):]; id != "" {
				return ProjectView(id)
			}
		}
	}

	return InboxView()
}
