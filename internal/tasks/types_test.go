package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_UnmarshalJSON(t *testing.T) {
	t.Run("numeric ids and instant", func(t *testing.T) {
		var task Task
		err := json.Unmarshal([]byte(`{"id": 42, "title": "Buy milk", "project": 7, "dueDate": "2026-03-10T09:30:00Z", "completed": true}`), &task)
		require.NoError(t, err)
		assert.Equal(t, "42", task.ID)
		assert.Equal(t, "7", task.Project)
		assert.True(t, task.Completed)
		require.True(t, task.HasDueDate())
		assert.True(t, task.DueDate.Equal(time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)))
	})

	t.Run("calendar date", func(t *testing.T) {
		var task Task
		require.NoError(t, json.Unmarshal([]byte(`{"id": "a", "title": "x", "dueDate": "2026-03-10"}`), &task))
		require.NotNil(t, task.DueDate)
		y, m, d := task.DueDate.Date()
		assert.Equal(t, 2026, y)
		assert.Equal(t, time.March, m)
		assert.Equal(t, 10, d)
	})

	t.Run("null and empty due date", func(t *testing.T) {
		for _, body := range []string{
			`{"id": "a", "title": "x", "dueDate": null}`,
			`{"id": "a", "title": "x", "dueDate": ""}`,
			`{"id": "a", "title": "x"}`,
		} {
			var task Task
			require.NoError(t, json.Unmarshal([]byte(body), &task))
			assert.False(t, task.HasDueDate(), body)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		var task Task
		assert.Error(t, json.Unmarshal([]byte(`{"id": "a", "title": "x", "dueDate": "tomorrow"}`), &task))
	})

	t.Run("null record", func(t *testing.T) {
		var task Task
		assert.ErrorIs(t, json.Unmarshal([]byte(` null `), &task), ErrNullTask)

		var list []Task
		assert.ErrorIs(t, json.Unmarshal([]byte(`[{"id": 1, "title": "ok"}, null]`), &list), ErrNullTask)
	})
}

func TestDraft_Resolve(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("trims and forces open", func(t *testing.T) {
		d, err := Draft{Title: "  Buy milk  ", Completed: true}.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", d.Title)
		assert.False(t, d.Completed)
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := Draft{Title: "   "}.Resolve()
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("due time folds into date", func(t *testing.T) {
		d, err := Draft{Title: "x", DueDate: &day, DueTime: "14:45"}.Resolve()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 14, 45, 0, 0, time.UTC), *d.DueDate)
		assert.Empty(t, d.DueTime)
		assert.Equal(t, 0, day.Hour(), "caller's date is not modified")
	})

	t.Run("time without date", func(t *testing.T) {
		_, err := Draft{Title: "x", DueTime: "10:00"}.Resolve()
		assert.Error(t, err)
	})

	t.Run("bad time", func(t *testing.T) {
		_, err := Draft{Title: "x", DueDate: &day, DueTime: "25:99"}.Resolve()
		assert.Error(t, err)
	})
}

func TestPatch(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())

	p := CompletionPatch(true)
	assert.False(t, p.IsEmpty())

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"completed": true}`, string(body))

	title := "renamed"
	orig := Task{ID: "1", Title: "a", Important: true}
	got := Patch{Title: &title, Completed: p.Completed}.Apply(orig)
	assert.Equal(t, Task{ID: "1", Title: "renamed", Important: true, Completed: true}, got)
	assert.Equal(t, "a", orig.Title)
}

func TestUserProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", UserProfile{Name: "Ada", Username: "ada"}.DisplayName())
	assert.Equal(t, "ada", UserProfile{Username: "ada"}.DisplayName())
	assert.Equal(t, "there", UserProfile{}.DisplayName())
}
