package main

import (
	"errors"
	"fmt"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/generator"
	"github.com/spf13/cobra"
)

var generateCount int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render quote cards without publishing",
	Long: `Pick unused quotes, render a card for each over a portrait of its
author, save it under OUTPUT_DIR and mark the quote used.

Examples:
  wisdomcard generate      # One card
  wisdomcard generate -n 5 # Five cards`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1, "Number of cards to render")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, (*config.Config).ValidateForRender)
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

	for i := 0; i < generateCount; i++ {
		card, err := gen.Generate(rt.ctx)
		if errors.Is(err, generator.ErrNoUnusedQuote) {
			fmt.Println("No unused quotes left")
			return nil
		}
		if err != nil {
			return fmt.Errorf("generate card: %w", err)
		}

		fmt.Printf("[%d] %s\n", card.Quote.ID, card.Path)
		fmt.Printf("    %s\n", card.Quote.AuthorLine())
	}
	return nil
}
