package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is where the backend listens in a local setup
	DefaultBaseURL = "http://127.0.0.1:8000/api"

	// DefaultCreatePath is the primary create endpoint
	DefaultCreatePath = "/tasks/"

	// LegacyCreatePath is the older create endpoint some backends still expose
	LegacyCreatePath = "/tasks/create/"

	// maxErrorBody caps how much of a rejection body is kept
	maxErrorBody = 512

	// RequestIDHeader carries a per-request correlation ID
	RequestIDHeader = "X-Request-ID"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	CreatePath string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Client talks JSON to the task backend
type Client struct {
	baseURL    string
	createPath string
	http       *http.Client
	log        logrus.FieldLogger
}

// New creates a Client. Empty options fall back to the local defaults.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}

	createPath := opts.CreatePath
	if createPath == "" {
		createPath = DefaultCreatePath
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Client{
		baseURL:    base,
		createPath: createPath,
		http:       httpClient,
		log:        logger,
	}, nil
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTasks fetches every task: GET /tasks/. Records with a blank title are
// skipped and logged; any other invalid record fails the whole fetch.
func (c *Client) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &MalformedError{Op: http.MethodGet, URL: c.url("/tasks/"), Err: errors.New("expected a task list")}
	}

	valid := out[:0]
	for i := range out {
		if err := validateTask(out[i]); err != nil {
			return nil, &MalformedError{Op: http.MethodGet, URL: c.url("/tasks/"), Err: fmt.Errorf("task %d: %w", i, err)}
		}
		if strings.TrimSpace(out[i].Title) == "" {
			c.log.WithField("task_id", out[i].ID).Warn("skipping task with a blank title")
			continue
		}
		valid = append(valid, out[i])
	}
	return valid, nil
}

// CreateTask submits a draft and returns the server record
func (c *Client) CreateTask(ctx context.Context, draft tasks.Draft) (tasks.Task, error) {
	var out tasks.Task
	if err := c.do(ctx, http.MethodPost, c.createPath, draft, &out); err != nil {
		return tasks.Task{}, err
	}
	if err := validateTask(out); err != nil {
		return tasks.Task{}, &MalformedError{Op: http.MethodPost, URL: c.url(c.createPath), Err: err}
	}
	return out, nil
}

// UpdateTask sends a partial update: PATCH /tasks/{id}/
func (c *Client) UpdateTask(ctx context.Context, id string, patch tasks.Patch) (tasks.Task, error) {
	path := taskPath(id)
	var out tasks.Task
	if err := c.do(ctx, http.MethodPatch, path, patch, &out); err != nil {
		return tasks.Task{}, err
	}
	if err := validateTask(out); err != nil {
		return tasks.Task{}, &MalformedError{Op: http.MethodPatch, URL: c.url(path), Err: err}
	}
	if out.ID != id {
		return tasks.Task{}, &MalformedError{Op: http.MethodPatch, URL: c.url(path), Err: fmt.Errorf("response id %q does not match %q", out.ID, id)}
	}
	return out, nil
}

// DeleteTask removes a task: DELETE /tasks/{id}/. Success is the status alone.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// GetUser fetches the user profile: GET /user/
func (c *Client) GetUser(ctx context.Context) (tasks.UserProfile, error) {
	var out tasks.UserProfile
	if err := c.do(ctx, http.MethodGet, "/user/", nil, &out); err != nil {
		return tasks.UserProfile{}, err
	}
	return out, nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id) + "/"
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// do performs one request. body is JSON-encoded when non-nil; out is decoded
// from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	target := c.url(path)

	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("remote request failed")
		return &NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("remote request rejected")
		return &RejectionError{
			Op:         method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	log.Debug("remote request completed")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		return &MalformedError{Op: method, URL: target, Err: err}
	}
	return nil
}

// validateTask checks the fields every task record must carry. A blank
// title is allowed: it can be transient while the task is being edited.
func validateTask(t tasks.Task) error {
	if t.ID == "" {
		return errors.New("missing id")
	}
	return nil
}
