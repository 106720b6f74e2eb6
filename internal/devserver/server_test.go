package devserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_ListSeeded(t *testing.T) {
	s := New(Options{Seed: []tasks.Task{{Title: "a"}, {ID: "10", Title: "b"}, {Title: "c"}}})

	rec := do(t, s, http.MethodGet, "/api/tasks/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []tasks.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "10", got[1].ID)
	assert.Equal(t, "11", got[2].ID, "IDs continue after the highest seeded one")
}

func TestServer_CreateBothPaths(t *testing.T) {
	s := New(Options{})

	for _, path := range []string{"/api/tasks/", "/api/tasks/create/"} {
		rec := do(t, s, http.MethodPost, path, `{"title":"  Water plants ","project":"home","completed":true}`)
		require.Equal(t, http.StatusCreated, rec.Code, path)

		var created tasks.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Water plants", created.Title)
		assert.False(t, created.Completed, "new tasks start open")
	}
	assert.Len(t, s.Tasks(), 2)
}

func TestServer_CreateBlankTitle(t *testing.T) {
	s := New(Options{})
	rec := do(t, s, http.MethodPost, "/api/tasks/", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.Tasks())
}

func TestServer_PatchAndDelete(t *testing.T) {
	due := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := New(Options{Seed: []tasks.Task{{Title: "a", DueDate: &due}, {Title: "b"}}})

	rec := do(t, s, http.MethodPatch, "/api/tasks/1/", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated tasks.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "a", updated.Title)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))

	rec = do(t, s, http.MethodPatch, "/api/tasks/99/", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/tasks/1/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, "/api/tasks/1/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	remaining := s.Tasks()
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].Title)
}

func TestServer_User(t *testing.T) {
	s := New(Options{User: tasks.UserProfile{Name: "Ada"}})
	rec := do(t, s, http.MethodGet, "/api/user/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var user tasks.UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Ada", user.DisplayName())
}

func TestServer_RejectNext(t *testing.T) {
	s := New(Options{Seed: []tasks.Task{{Title: "a"}}})
	s.RejectNext(http.StatusServiceUnavailable)

	rec := do(t, s, http.MethodGet, "/api/tasks/", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/tasks/", "")
	assert.Equal(t, http.StatusOK, rec.Code, "faults are consumed once")
}

func TestServer_EchoesRequestID(t *testing.T) {
	s := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestServer_CustomPrefix(t *testing.T) {
	s := New(Options{Prefix: "v2/"})
	assert.Equal(t, "/v2", s.Prefix())
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/v2/tasks/", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/tasks/", "").Code)
}

func TestSampleTasks(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	sample := SampleTasks(now)
	require.NotEmpty(t, sample)

	todayCount := 0
	for _, task := range sample {
		if task.HasDueDate() && task.DueDate.Day() == now.Day() {
			todayCount++
		}
	}
	assert.Equal(t, 2, todayCount)
}
