package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/adriangreen/tm-dash/internal/config"
	"github.com/adriangreen/tm-dash/internal/journal"
	"github.com/adriangreen/tm-dash/internal/logging"
	"github.com/adriangreen/tm-dash/internal/remote"
	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app bundles everything a command needs to talk to the task API
type app struct {
	cfg     *config.Config
	manager *config.ConfigManager
	log     *logrus.Logger
	service *tasks.Service
	journal *journal.Journal
	closers []io.Closer
}

// setup loads the config, opens the log and journal and builds the task
// service. The journal is optional: a failure to open it is logged and the
// commands keep working without history.
func setup(cmd *cobra.Command, withJournal bool) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	baseURL, _ := cmd.Flags().GetString("base-url")
	logLevel, _ := cmd.Flags().GetString("log-level")

	manager, err := config.NewConfigManager(configPath)
	if err != nil {
		return nil, err
	}
	if baseURL != "" || logLevel != "" {
		err := manager.SetOverride(func(c *config.Config) {
			if baseURL != "" {
				c.BaseURL = baseURL
			}
			if logLevel != "" {
				c.LogLevel = logLevel
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}
	cfg := manager.GetConfig()

	logger, logCloser, err := logging.New(logging.Options{
		Level: cfg.LogLevel,
		Path:  cfg.LogPath,
	})
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		manager: manager,
		log:     logger,
		closers: []io.Closer{logCloser},
	}

	client, err := remote.New(remote.Options{
		BaseURL:    cfg.BaseURL,
		CreatePath: cfg.CreatePath,
		Timeout:    cfg.Timeout(),
		Logger:     logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []tasks.Option{tasks.WithLogger(logger)}
	if withJournal {
		j, err := journal.Open(cfg.JournalBackend, cfg.JournalPath)
		if err != nil {
			logger.WithError(err).WithField("backend", cfg.JournalBackend).Warn("journal unavailable, continuing without history")
		} else {
			a.journal = j
			a.closers = append(a.closers, j)
			opts = append(opts, tasks.WithJournal(j))
		}
	}

	a.service = tasks.NewService(client, tasks.NewRegistry(projectSeed(cfg)), tasks.NewSelector(tasks.InboxView()), opts...)
	return a, nil
}

// projectSeed converts the configured projects, falling back to the defaults
func projectSeed(cfg *config.Config) []tasks.Project {
	if len(cfg.Projects) == 0 {
		return tasks.DefaultProjects
	}
	seed := make([]tasks.Project, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		seed = append(seed, tasks.Project{ID: p.ID, Name: p.Name})
	}
	return seed
}

// Close releases the journal and the log file, newest first
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// requireArg returns the trimmed first argument or an error naming it
func requireArg(args []string, name string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return strings.TrimSpace(args[0]), nil
}
