// Package devserver is an in-memory task backend speaking the same HTTP
// contract as the real API. It backs `tm-dash serve-dev` and the client tests.
package devserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// Options configures a Server
type Options struct {
	// Prefix is the mount point of the API, "/api" when empty
	Prefix string
	// Seed is the initial task list; IDs are assigned when blank
	Seed []tasks.Task
	// User is returned from GET /user/
	User tasks.UserProfile
	// Logger receives one line per request
	Logger *log.Logger
}

// Server holds tasks in memory and serves them over echo
type Server struct {
	echo   *echo.Echo
	prefix string
	log    *log.Logger

	mu     sync.Mutex
	order  []string
	tasks  map[string]tasks.Task
	nextID int
	user   tasks.UserProfile
	faults []int
}

// New builds a server with its routes registered
func New(opts Options) *Server {
	prefix := "/" + strings.Trim(opts.Prefix, "/")
	if prefix == "/" {
		prefix = "/api"
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}

	s := &Server{
		echo:   echo.New(),
		prefix: prefix,
		log:    logger,
		tasks:  make(map[string]tasks.Task),
		nextID: 1,
		user:   opts.User,
	}
	for _, t := range opts.Seed {
		s.insert(t)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: "X-Request-ID",
	}))
	s.echo.Use(s.requestLogger())
	s.echo.Use(s.faultInjector())
	s.register()
	return s
}

func (s *Server) register() {
	g := s.echo.Group(s.prefix)
	g.GET("/tasks/", s.listTasks)
	g.POST("/tasks/", s.createTask)
	g.POST("/tasks/create/", s.createTask)
	g.PATCH("/tasks/:id/", s.updateTask)
	g.DELETE("/tasks/:id/", s.deleteTask)
	g.GET("/user/", s.getUser)
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}

// Handler exposes the server for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Prefix returns the API mount point
func (s *Server) Prefix() string {
	return s.prefix
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("dev backend listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// RejectNext makes the next request fail with the given status
func (s *Server) RejectNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, status)
}

// Tasks returns a copy of the stored tasks in insertion order
func (s *Server) Tasks() []tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tasks.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out
}

// insert stores t, assigning an ID when blank. Caller holds mu or owns s.
func (s *Server) insert(t tasks.Task) tasks.Task {
	if t.ID == "" {
		t.ID = strconv.Itoa(s.nextID)
	}
	if n, err := strconv.Atoi(t.ID); err == nil && n >= s.nextID {
		s.nextID = n + 1
	}
	if _, exists := s.tasks[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = t
	return t
}

func (s *Server) listTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Tasks())
}

func (s *Server) createTask(c echo.Context) error {
	var draft tasks.Draft
	if err := c.Bind(&draft); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "invalid task body"})
	}
	if strings.TrimSpace(draft.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"title": "This field may not be blank."})
	}

	s.mu.Lock()
	created := s.insert(tasks.Task{
		Title:     strings.TrimSpace(draft.Title),
		Location:  draft.Location,
		Category:  draft.Category,
		Tag:       draft.Tag,
		Project:   draft.Project,
		DueDate:   draft.DueDate,
		Important: draft.Important,
	})
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTask(c echo.Context) error {
	id := c.Param("id")

	var patch tasks.Patch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "invalid patch body"})
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"title": "This field may not be blank."})
	}

	s.mu.Lock()
	current, ok := s.tasks[id]
	if ok {
		current = patch.Apply(current)
		s.tasks[id] = current
	}
	s.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
	return c.JSON(http.StatusOK, current)
}

func (s *Server) deleteTask(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	_, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getUser(c echo.Context) error {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	return c.JSON(http.StatusOK, user)
}

func (s *Server) faultInjector() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.mu.Lock()
			status := 0
			if len(s.faults) > 0 {
				status = s.faults[0]
				s.faults = s.faults[1:]
			}
			s.mu.Unlock()

			if status != 0 {
				return c.JSON(status, map[string]string{"detail": http.StatusText(status)})
			}
			return next(c)
		}
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			s.log.WithFields(log.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"request_id": c.Response().Header().Get("X-Request-ID"),
				"duration":   time.Since(start),
			}).Info("request")
			return nil
		}
	}
}

// SampleTasks returns a small task set relative to now, used by serve-dev
func SampleTasks(now time.Time) []tasks.Task {
	day := func(offset int, hour int) *time.Time {
		d := time.Date(now.Year(), now.Month(), now.Day()+offset, hour, 0, 0, 0, now.Location())
		return &d
	}
	return []tasks.Task{
		{Title: "Finish reading chapter 4", Project: "school", Category: "reading", DueDate: day(0, 18)},
		{Title: "Buy groceries", Project: "home", Location: "Market", Tag: "errand", DueDate: day(0, 12), Important: true},
		{Title: "Call grandma", Project: "friends", DueDate: day(2, 19)},
		{Title: "Lab report", Project: "school", Category: "writing", DueDate: day(5, 9), Important: true},
		{Title: "Clean the garage", Project: "home", Completed: true},
		{Title: "Try the new ramen place", Project: "random", Location: "Downtown"},
	}
}
