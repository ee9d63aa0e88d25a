// Package generator produces one card per call: it picks an unused quote and
// a portrait of its author, renders the card, saves it and marks the quote
// used.
package generator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/abdulachik/wisdomcard/internal/db"
	"github.com/abdulachik/wisdomcard/internal/logging"
)

// ErrNoUnusedQuote is returned when every enabled quote already has a card.
var ErrNoUnusedQuote = errors.New("no unused quote")

// QuoteStore is the part of the database the generator needs.
type QuoteStore interface {
	PickUnusedQuote(ctx context.Context) (db.Quote, error)
	MarkQuoteUsed(ctx context.Context, arg db.MarkQuoteUsedParams) error
}

// PortraitPicker chooses a prepared portrait for an author.
type PortraitPicker interface {
	Pick(author string, rng *rand.Rand) (string, error)
}

// CardRenderer draws a card from a portrait file.
type CardRenderer interface {
	RenderCard(portraitPath, quoteText, authorText string) (*image.NRGBA, error)
}

// Card is a produced and recorded card.
type Card struct {
	Quote    db.Quote
	Portrait string
	Path     string
}

// Generator wires the selection and bookkeeping steps around the renderer.
type Generator struct {
	Store     QuoteStore
	Portraits PortraitPicker
	Renderer  CardRenderer
	OutputDir string
	Quality   int
	Rand      *rand.Rand
	Now       func() time.Time
	Logger    *slog.Logger
}

// Generate produces one card. It returns ErrNoUnusedQuote when the corpus is
// exhausted and an error wrapping portrait.ErrNoPortraits when the quote's
// author has no portrait; in both cases nothing is rendered or written.
func (g *Generator) Generate(ctx context.Context) (*Card, error) {
	logger := logging.OrNop(g.Logger)

	quote, err := g.Store.PickUnusedQuote(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoUnusedQuote
	}
	if err != nil {
		return nil, fmt.Errorf("pick quote: %w", err)
	}

	portraitPath, err := g.Portraits.Pick(quote.AuthorNameLatin, g.Rand)
	if err != nil {
		return nil, fmt.Errorf("pick portrait for %s: %w", quote.AuthorNameLatin, err)
	}

	text := quote.QuoteNative
	if text == "" {
		text = quote.QuoteLatin
	}

	logger.Info("rendering card",
		"quote_id", quote.ID,
		"author", quote.AuthorNameLatin,
		"portrait", filepath.Base(portraitPath))

	img, err := g.Renderer.RenderCard(portraitPath, text, quote.AuthorLine())
	if err != nil {
		return nil, fmt.Errorf("render card: %w", err)
	}

	now := g.now()
	path, err := SaveArtifact(img, g.OutputDir, now, g.Quality)
	if err != nil {
		return nil, err
	}

	if err := g.Store.MarkQuoteUsed(ctx, db.MarkQuoteUsedParams{
		ID:       quote.ID,
		Artifact: filepath.Base(path),
		UsedAt:   now,
	}); err != nil {
		return nil, fmt.Errorf("mark quote %d used: %w", quote.ID, err)
	}

	logger.Info("card saved", "quote_id", quote.ID, "path", path)
	return &Card{Quote: quote, Portrait: portraitPath, Path: path}, nil
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}
