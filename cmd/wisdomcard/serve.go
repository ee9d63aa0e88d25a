package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the posting daemon",
	Long: `Run the daemon that renders and publishes one card per POST_INTERVAL,
at most MAX_POSTS_PER_DAY per day.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, (*config.Config).ValidateForServe)
	if err != nil {
		return err
	}
	defer rt.Close()

	a, err := rt.openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.Scheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	ctx, stop := signalContext(rt.ctx)
	defer stop()

	rt.logger.Info("starting wisdomcard daemon",
		"post_interval", rt.cfg.PostInterval,
		"max_posts_per_day", rt.cfg.MaxPostsPerDay,
	)

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler error: %w", err)
	}

	logHealth(rt.logger, sched.Health())
	rt.logger.Info("shutting down...")
	return nil
}

// logHealth reports the last known state of every component.
func logHealth(logger *slog.Logger, health *scheduler.Health) {
	statuses := health.GetAllStatuses()
	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		st := statuses[name]
		logger.Info("component status",
			"component", name,
			"healthy", st.Healthy,
			"message", st.Message,
			"last_success", st.LastSuccess)
	}

	if !health.IsOverallHealthy() {
		logger.Warn("stopped with unhealthy components", "components", health.Unhealthy())
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
