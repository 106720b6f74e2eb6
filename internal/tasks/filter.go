package tasks

import (
	"strings"
	"time"
)

// Counters are derived from the whole store (or the whole project for
// project views), never from the displayed subset.
type Counters struct {
	Total       int
	Completed   int
	Uncompleted int
	Upcoming    int
}

// SelectTasks returns the tasks to display for the given view and search term,
// in the order they appear in all. The input slice is never modified.
func SelectTasks(all []Task, view View, search string, now time.Time) []Task {
	needle := strings.ToLower(search)

	result := make([]Task, 0, len(all))
	for i := range all {
		if matchesSearch(&all[i], needle) && matchesView(&all[i], view, now) {
			result = append(result, all[i])
		}
	}
	return result
}

// Matches reports whether a single task would be displayed
func Matches(task Task, view View, search string, now time.Time) bool {
	return matchesSearch(&task, strings.ToLower(search)) && matchesView(&task, view, now)
}

// matchesSearch applies the free-text filter. needle must already be lowercased.
func matchesSearch(task *Task, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{task.Title, task.Location, task.Category, task.Tag} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// matchesView applies the predicate of the active view
func matchesView(task *Task, view View, now time.Time) bool {
	switch view.Kind() {
	case ViewToday:
		return !task.Completed && task.HasDueDate() && sameDay(*task.DueDate, now)
	case ViewUpcoming:
		return task.HasDueDate() && task.DueDate.After(now)
	case ViewCompleted:
		return task.Completed
	case ViewImportant:
		return task.Important
	case ViewProject:
		return task.Project == view.ProjectID()
	default:
		// Inbox
		return !task.Completed
	}
}

// sameDay compares calendar dates in now's location
func sameDay(due, now time.Time) bool {
	due = due.In(now.Location())
	y1, m1, d1 := due.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Count computes the navigation counters. Project views count only the
// project's tasks, every other view counts the full store.
func Count(all []Task, scope View, now time.Time) Counters {
	var c Counters
	for i := range all {
		task := &all[i]
		if scope.IsProject() && task.Project != scope.ProjectID() {
			continue
		}
		c.Total++
		if task.Completed {
			c.Completed++
			continue
		}
		if task.HasDueDate() && task.DueDate.After(now) {
			c.Upcoming++
		}
	}
	c.Uncompleted = c.Total - c.Completed
	return c
}

// ToDoCount returns how many of the displayed tasks are still open
func ToDoCount(displayed []Task) int {
	n := 0
	for i := range displayed {
		if !displayed[i].Completed {
			n++
		}
	}
	return n
}
