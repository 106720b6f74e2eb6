package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adriangreen/tm-dash/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// journalGCInterval is how often the badger journal reclaims value log space
const journalGCInterval = 10 * time.Minute

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tm-dash",
		Short: "tm-dash - terminal dashboard for your task list",
		Long: `tm-dash is a terminal dashboard for a remote task list. It shows your
tasks by view (inbox, today, upcoming, important, completed) or by project,
and lets you add, complete and delete them against the task API.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	// Shared by every subcommand
	cmd.PersistentFlags().String("config", "", "Path to the config file (default: user config dir)")
	cmd.PersistentFlags().String("base-url", "", "Base URL of the task API, overrides the config")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.Flags().String("view", "", "View to start on (inbox, today, upcoming, important, completed, project-<id>)")
	cmd.Flags().Bool("clear-state", false, "Clear the TUI state before starting")

	cmd.AddCommand(
		newListCommand(),
		newAddCommand(),
		newDoneCommand(),
		newRemoveCommand(),
		newWhoamiCommand(),
		newJournalCommand(),
		newServeDevCommand(),
	)
	return cmd
}

// signalContext returns a context cancelled on interrupt or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// runTUI starts the Bubble Tea TUI application
func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	clearState, _ := cmd.Flags().GetBool("clear-state")
	if clearState && a.cfg.StatePath != "" {
		if err := os.Remove(a.cfg.StatePath); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to clear state file: %v\n", err)
		} else if err == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "TUI state cleared successfully")
		}
	}

	if a.manager != nil && a.cfg.ConfigPath != "" {
		if err := a.manager.StartWatcher(ctx); err != nil {
			// Watching is optional
			a.log.WithError(err).Warn("failed to start config watcher")
		}
		defer a.manager.StopWatcher()
	}

	if a.journal != nil {
		go a.journal.RunMaintenance(ctx, journalGCInterval)
	}

	initialView, _ := cmd.Flags().GetString("view")
	m := ui.NewModel(ui.Options{
		Config:        a.cfg,
		ConfigManager: a.manager,
		Service:       a.service,
		Logger:        a.log,
		Context:       ctx,
		InitialView:   initialView,
	})

	a.log.WithField("base_url", a.cfg.BaseURL).Info("starting tm-dash")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
