package main

import (
	"fmt"
	"path/filepath"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/workspace"
	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Create working directories",
	Long: `Create the database, image, source, output, font and log directories
and set their permissions to DIR_MODE. Safe to run repeatedly.`,
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	changes, err := workspace.Prepare(rt.logger, cfg.DirMode,
		filepath.Dir(cfg.DatabasePath),
		cfg.ImageDir,
		cfg.SourceDir,
		cfg.OutputDir,
		cfg.FontDir,
		cfg.LogDir,
	)
	if err != nil {
		return fmt.Errorf("prepare workspace: %w", err)
	}

	if len(changes) == 0 {
		fmt.Println("Workspace already prepared")
		return nil
	}
	for _, c := range changes {
		if c.Created {
			fmt.Printf("created %s (%o)\n", c.Path, c.NewMode)
		} else {
			fmt.Printf("chmod   %s %o -> %o\n", c.Path, c.OldMode, c.NewMode)
		}
	}
	return nil
}
