package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adriangreen/tm-dash/internal/devserver"
	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevClient(t *testing.T, opts devserver.Options) (*Client, *devserver.Server) {
	t.Helper()
	backend := devserver.New(opts)
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	client, err := New(Options{BaseURL: ts.URL + backend.Prefix() + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client, backend
}

func newRawClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := New(Options{BaseURL: ts.URL})
	require.NoError(t, err)
	return client
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client, backend := newDevClient(t, devserver.Options{
		Seed: []tasks.Task{{Title: "Buy milk"}},
		User: tasks.UserProfile{Username: "ada"},
	})

	list, err := client.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].ID)

	due := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	created, err := client.CreateTask(ctx, tasks.Draft{Title: "Report", DueDate: &due, Important: true})
	require.NoError(t, err)
	assert.Equal(t, "2", created.ID)
	assert.True(t, created.Important)
	require.NotNil(t, created.DueDate)
	assert.True(t, due.Equal(*created.DueDate))

	toggled, err := client.UpdateTask(ctx, "2", tasks.CompletionPatch(true))
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, "Report", toggled.Title)

	require.NoError(t, client.DeleteTask(ctx, "1"))
	assert.Len(t, backend.Tasks(), 1)

	user, err := client.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", user.DisplayName())
}

func TestClient_LegacyCreatePath(t *testing.T) {
	var gotPath string
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 9, "title": "x", "completed": false}`)
	})
	client.createPath = LegacyCreatePath

	created, err := client.CreateTask(context.Background(), tasks.Draft{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)
	assert.Equal(t, "/tasks/create/", gotPath)
}

func TestClient_Rejection(t *testing.T) {
	client, backend := newDevClient(t, devserver.Options{Seed: []tasks.Task{{Title: "a"}}})

	backend.RejectNext(http.StatusInternalServerError)
	err := client.DeleteTask(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, KindRejected, Kind(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Contains(t, err.Error(), "Internal Server Error")
	assert.Len(t, backend.Tasks(), 1)

	_, err = client.UpdateTask(context.Background(), "404", tasks.CompletionPatch(true))
	assert.Equal(t, KindRejected, Kind(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestClient_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, err := New(Options{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.ListTasks(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNetwork, Kind(err))
	assert.Zero(t, StatusCode(err))

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestClient_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(*Client) error
	}{
		{"not json", `<html>oops</html>`, func(c *Client) error {
			_, err := c.ListTasks(context.Background())
			return err
		}},
		{"empty body", ``, func(c *Client) error {
			_, err := c.ListTasks(context.Background())
			return err
		}},
		{"task without id", `[{"title": "x"}]`, func(c *Client) error {
			_, err := c.ListTasks(context.Background())
			return err
		}},
		{"null list", `null`, func(c *Client) error {
			_, err := c.ListTasks(context.Background())
			return err
		}},
		{"null task in list", `[{"id": 1, "title": "ok"}, null]`, func(c *Client) error {
			_, err := c.ListTasks(context.Background())
			return err
		}},
		{"null patch response", `null`, func(c *Client) error {
			_, err := c.UpdateTask(context.Background(), "1", tasks.CompletionPatch(true))
			return err
		}},
		{"null create response", `null`, func(c *Client) error {
			_, err := c.CreateTask(context.Background(), tasks.Draft{Title: "x"})
			return err
		}},
		{"bad due date", `[{"id": 1, "title": "x", "dueDate": "someday"}]`, func(c *Client) error {
			_, err := c.ListTasks(context.Background())
			return err
		}},
		{"patch id mismatch", `{"id": 2, "title": "x"}`, func(c *Client) error {
			_, err := c.UpdateTask(context.Background(), "1", tasks.CompletionPatch(true))
			return err
		}},
		{"user not object", `[]`, func(c *Client) error {
			_, err := c.GetUser(context.Background())
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			err := tt.call(client)
			require.Error(t, err)
			assert.Equal(t, KindMalformed, Kind(err), err.Error())
		})
	}
}

func TestClient_ListSkipsBlankTitles(t *testing.T) {
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "title": "ok"}, {"id": 2, "title": "  "}, {"id": 3, "title": "also ok"}]`)
	})

	list, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "3", list[1].ID)
}

func TestClient_EmptyListIsNotMalformed(t *testing.T) {
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	list, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_Headers(t *testing.T) {
	var (
		requestID   string
		contentType string
		body        string
	)
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(RequestIDHeader)
		contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		fmt.Fprint(w, `{"id": "1", "title": "x", "completed": true}`)
	})

	_, err := client.UpdateTask(context.Background(), "1", tasks.CompletionPatch(true))
	require.NoError(t, err)

	_, err = uuid.Parse(requestID)
	assert.NoError(t, err, "request id should be a uuid")
	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"completed": true}`, body)
}

func TestClient_DeleteIgnoresBody(t *testing.T) {
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tasks/a%20b/", r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "not json at all")
	})
	assert.NoError(t, client.DeleteTask(context.Background(), "a b"))
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, DefaultCreatePath, client.createPath)

	_, err = New(Options{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestKind(t *testing.T) {
	assert.Equal(t, ErrorKind(""), Kind(nil))
	assert.Equal(t, KindUnknown, Kind(errors.New("x")))
	wrapped := fmt.Errorf("outer: %w", &MalformedError{Op: "GET", URL: "u", Err: errors.New("bad")})
	assert.Equal(t, KindMalformed, Kind(wrapped))
}
