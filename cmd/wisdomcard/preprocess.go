package main

import (
	"fmt"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/spf13/cobra"
)

var preprocessWatch bool

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Normalize source photos into portraits",
	Long: `Turn every photo in SOURCE_DIR into a square grayscale portrait under
IMAGE_DIR/<author>. A photo belongs to the author whose latin name its file
name starts with. Existing portraits are kept.

Examples:
  wisdomcard preprocess          # Process the directory once
  wisdomcard preprocess --watch  # Keep processing new photos`,
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().BoolVar(&preprocessWatch, "watch", false, "Process photos as they are added")
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, (*config.Config).ValidateForPreprocess)
	if err != nil {
		return err
	}
	defer rt.Close()

	a, err := rt.openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	authors, err := a.Store.ListAuthors(rt.ctx)
	if err != nil {
		return fmt.Errorf("list authors: %w", err)
	}

	pre := a.Preprocessor()
	summary, err := pre.ProcessDir(rt.ctx, authors)
	if err != nil {
		return fmt.Errorf("preprocess %s: %w", pre.SourceDir, err)
	}
	fmt.Printf("Processed %d, existing %d, skipped %d\n", summary.Processed, summary.Existing, summary.Skipped)

	if !preprocessWatch {
		return nil
	}

	ctx, stop := signalContext(rt.ctx)
	defer stop()

	results, err := pre.Watch(ctx, authors)
	if err != nil {
		return fmt.Errorf("watch %s: %w", pre.SourceDir, err)
	}

	rt.logger.Info("watching for new photos", "dir", pre.SourceDir)
	for res := range results {
		if res.Err != nil {
			fmt.Printf("skipped %s: %v\n", res.Source, res.Err)
			continue
		}
		fmt.Printf("prepared %s\n", res.Output)
	}
	return nil
}
