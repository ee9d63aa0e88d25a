package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/portrait"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  `Display statistics about quotes, portraits and posts.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer rt.Close()

	a, err := rt.openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := rt.ctx
	store := a.Store

	totalQuotes, err := store.CountQuotes(ctx)
	if err != nil {
		return fmt.Errorf("count quotes: %w", err)
	}

	unusedQuotes, err := store.CountUnusedQuotes(ctx)
	if err != nil {
		return fmt.Errorf("count unused quotes: %w", err)
	}

	byAuthor, err := store.CountQuotesByAuthor(ctx)
	if err != nil {
		return fmt.Errorf("count quotes by author: %w", err)
	}

	totalPosts, err := store.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}

	pool := portrait.Pool{Dir: rt.cfg.ImageDir}

	fmt.Println("=== wisdomcard Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", rt.cfg.DatabasePath)
	fmt.Println()
	fmt.Println("Quotes:")
	fmt.Printf("  Total: %d\n", totalQuotes)
	fmt.Printf("  Unused: %d\n", unusedQuotes)
	fmt.Println()

	if len(byAuthor) > 0 {
		fmt.Println("  By author (used/total, portraits):")
		for _, row := range byAuthor {
			portraits, _ := pool.List(row.AuthorNameLatin)
			fmt.Printf("    %s: %d/%d, %d\n", row.AuthorNameLatin, row.Used, row.Total, len(portraits))
		}
		fmt.Println()
	}

	cards, size := cardUsage(rt.cfg.OutputDir)
	fmt.Println("Cards:")
	fmt.Printf("  Rendered: %d (%s)\n", cards, humanize.Bytes(size))
	fmt.Println()

	fmt.Println("Activity:")
	fmt.Printf("  Total posts: %d\n", totalPosts)
	for _, platform := range []string{"content_api", "instagram", "bluesky"} {
		today, err := store.CountPostsToday(ctx, platform)
		if err != nil {
			return fmt.Errorf("count %s posts: %w", platform, err)
		}
		fmt.Printf("  %s today: %d\n", platform, today)
	}
	fmt.Println()

	return nil
}

// cardUsage counts the rendered cards in dir and their total size.
func cardUsage(dir string) (int, uint64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}

	var (
		count int
		size  uint64
	)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".jpeg") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		count++
		size += uint64(info.Size())
	}
	return count, size
}
