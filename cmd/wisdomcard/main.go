package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abdulachik/wisdomcard/internal/app"
	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wisdomcard",
	Short: "Investment wisdom quote cards",
	Long: `wisdomcard renders quote cards over author portraits and publishes
them to the content site, Instagram and Bluesky.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// cmdEnv is what every command gets before it starts: the configuration,
// the logger and a context carrying it.
type cmdEnv struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// setup loads configuration, checks it with validate and builds the logger.
func setup(cmd *cobra.Command, validate func(*config.Config) error) (*cmdEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if validate != nil {
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}

	logger, closer, err := logging.New(logging.Config{
		Level: cfg.LogLevel,
		Dir:   cfg.LogDir,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return &cmdEnv{
		ctx:    logging.WithContext(ctx, logger),
		cfg:    cfg,
		logger: logger,
		closer: closer,
	}, nil
}

// openApp opens the database named by the configuration.
func (r *cmdEnv) openApp() (*app.App, error) {
	a, err := app.New(r.ctx, r.cfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	return a, nil
}

func (r *cmdEnv) Close() error {
	return r.closer.Close()
}
