package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/adriangreen/tm-dash/internal/devserver"
	"github.com/adriangreen/tm-dash/internal/logging"
	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds the graceful stop of the dev backend
const shutdownTimeout = 5 * time.Second

func newServeDevCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-dev",
		Short: "Run an in-memory task backend for local development",
		Long: `serve-dev starts a task backend that keeps everything in memory and
speaks the same HTTP API as the real server. It is seeded with a few sample
tasks dated relative to today. Point the dashboard at it with
--base-url http://127.0.0.1:8000/api.`,
		Args: cobra.NoArgs,
		RunE: runServeDev,
	}
	cmd.Flags().String("addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().String("prefix", "/api", "Mount point of the API")
	cmd.Flags().Bool("empty", false, "Start without sample tasks")
	cmd.Flags().String("user", "Ada", "Name returned by GET /user/")
	return cmd
}

func runServeDev(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	prefix, _ := cmd.Flags().GetString("prefix")
	empty, _ := cmd.Flags().GetBool("empty")
	user, _ := cmd.Flags().GetString("user")
	level, _ := cmd.Flags().GetString("log-level")

	logger, closer, err := logging.New(logging.Options{Level: level, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer closer.Close()

	var seed []tasks.Task
	if !empty {
		seed = devserver.SampleTasks(time.Now())
	}
	srv := devserver.New(devserver.Options{
		Prefix: prefix,
		Seed:   seed,
		User:   tasks.UserProfile{Name: user, Username: user},
		Logger: logger,
	})

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d tasks on http://%s%s (Ctrl+C to stop)\n", len(seed), addr, srv.Prefix())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop dev backend: %w", err)
	}
	return <-errCh
}
