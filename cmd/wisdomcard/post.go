package main

import (
	"errors"
	"fmt"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/generator"
	"github.com/spf13/cobra"
)

var postDryRun bool

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Render a card and publish it",
	Long: `Render one card, upload it to the content API and post it to
Instagram and, when configured, Bluesky.

Examples:
  wisdomcard post            # Actually post
  wisdomcard post --dry-run  # Render the card and show the platforms only`,
	RunE: runPost,
}

func init() {
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Render the card without publishing it")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	validate := (*config.Config).ValidateForPosting
	if postDryRun {
		validate = (*config.Config).ValidateForRender
	}

	rt, err := setup(cmd, validate)
	if err != nil {
		return err
	}
	defer rt.Close()

	a, err := rt.openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	gen, err := a.Generator()
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	pub := a.Publisher()
	rt.logger.Info("starting post workflow", "dry_run", postDryRun, "platforms", len(pub.Posters()))

	card, err := gen.Generate(rt.ctx)
	if errors.Is(err, generator.ErrNoUnusedQuote) {
		fmt.Println("No unused quotes left")
		return nil
	}
	if err != nil {
		return fmt.Errorf("generate card: %w", err)
	}

	fmt.Printf("Card: %s\n", card.Path)
	fmt.Printf("Author: %s\n", card.Quote.AuthorLine())

	if postDryRun {
		for _, p := range pub.Posters() {
			fmt.Printf("Would post to: %s\n", p.Platform())
		}
		return nil
	}

	outcomes, err := pub.Publish(rt.ctx, card)
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("  %s: failed: %v\n", o.Platform, o.Err)
			continue
		}
		fmt.Printf("  %s: %s %s\n", o.Platform, o.Result.PostID, o.Result.PostURL)
	}
	if err != nil {
		return fmt.Errorf("publish card: %w", err)
	}
	return nil
}
