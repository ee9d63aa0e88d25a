package card

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/abdulachik/wisdomcard/internal/layout"
	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/disintegration/imaging"
)

// Initial sizes for the fit search.
const (
	QuoteInitialSize  = 60
	AuthorInitialSize = 20
)

// Renderer turns a portrait file, a quote and an author into a card.
type Renderer struct {
	QuoteFont  *layout.Font
	AuthorFont *layout.Font
	Resolver   *layout.Resolver
	Compositor *Compositor
	Logger     *slog.Logger
}

// NewRenderer loads both fonts. A missing or broken font file is returned as
// a *layout.FontLoadError.
func NewRenderer(quoteFontPath, authorFontPath string, logger *slog.Logger) (*Renderer, error) {
	quoteFont, err := layout.LoadFont(quoteFontPath)
	if err != nil {
		return nil, err
	}
	authorFont, err := layout.LoadFont(authorFontPath)
	if err != nil {
		quoteFont.Close()
		return nil, err
	}
	return NewRendererWithFonts(quoteFont, authorFont, logger), nil
}

// NewRendererWithFonts builds a renderer from already parsed fonts.
func NewRendererWithFonts(quoteFont, authorFont *layout.Font, logger *slog.Logger) *Renderer {
	logger = logging.OrNop(logger)
	return &Renderer{
		QuoteFont:  quoteFont,
		AuthorFont: authorFont,
		Resolver:   layout.NewResolver(logger),
		Compositor: NewCompositor(),
		Logger:     logger,
	}
}

// RenderCard fits the quote and the author into 80% of the portrait's width
// and half its height, then composites them using the placement token in the
// portrait's file name. Quotation marks are added when the lines are drawn.
func (r *Renderer) RenderCard(portraitPath, quoteText, authorText string) (*image.NRGBA, error) {
	bg, err := imaging.Open(portraitPath)
	if err != nil {
		return nil, fmt.Errorf("open portrait: %w", err)
	}

	b := bg.Bounds()
	box := layout.BoxFor(b.Dx(), b.Dy())

	quote := r.Resolver.Fit(quoteText, box, r.QuoteFont, QuoteInitialSize)
	author := r.Resolver.Fit(authorText, box, r.AuthorFont, AuthorInitialSize)
	placement := layout.ParsePlacement(portraitPath)

	r.Logger.Debug("rendering card",
		"portrait", portraitPath,
		"placement", placement.String(),
		"quote_size", quote.Size,
		"quote_lines", len(quote.Lines),
		"author_size", author.Size,
		"fallback", quote.Fallback || author.Fallback)

	return r.Compositor.Render(bg, quote, authorText, author.Face, placement), nil
}

// Close releases the fonts' cached faces.
func (r *Renderer) Close() error {
	var errs []error
	if r.QuoteFont != nil {
		errs = append(errs, r.QuoteFont.Close())
	}
	if r.AuthorFont != nil && r.AuthorFont != r.QuoteFont {
		errs = append(errs, r.AuthorFont.Close())
	}
	return errors.Join(errs...)
}
