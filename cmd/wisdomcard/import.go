package main

import (
	"fmt"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/db"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [csv]",
	Short: "Import quotes from a CSV file",
	Long: `Import the quote corpus from a CSV with the columns
name_en, name_kr, wisdom_en, wisdom_kr. The header row is skipped and rows
without exactly four fields are ignored. Defaults to CORPUS_CSV_PATH.

Examples:
  wisdomcard import
  wisdomcard import data/wisdom.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer rt.Close()

	path := rt.cfg.CorpusCSVPath
	if len(args) == 1 {
		path = args[0]
	}

	store, err := db.NewStore(rt.ctx, rt.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(rt.ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	n, err := store.ImportCSVFile(rt.ctx, path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	fmt.Printf("Imported %d quotes from %s\n", n, path)
	return nil
}
