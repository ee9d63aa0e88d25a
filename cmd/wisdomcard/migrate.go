package main

import (
	"fmt"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Run all pending database migrations to set up or update the schema.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("connecting to database", "path", rt.cfg.DatabasePath)
	store, err := db.NewStore(rt.ctx, rt.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(rt.ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	rt.logger.Info("migrations completed successfully")
	return nil
}
