package layout

import (
	"errors"
	"log/slog"

	"github.com/abdulachik/wisdomcard/internal/logging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Box is the area a text block must fit in.
type Box struct {
	MaxWidth  int
	MaxHeight int
}

// BoxFor returns the quote box for an image: 80% of its width and 50% of its
// height.
func BoxFor(width, height int) Box {
	return Box{MaxWidth: width * 4 / 5, MaxHeight: height / 2}
}

// WrappedText is the outcome of a fit: the lines to draw and the face to draw
// them with. When Fallback is false the block fits the box it was fitted to.
type WrappedText struct {
	Lines    []string
	Size     int
	Face     font.Face
	Spacing  float64
	Fallback bool
}

// Metrics measures the text with its own face and spacing.
func (w WrappedText) Metrics() Metrics {
	return Measure(w.Face, w.Lines, w.Spacing)
}

// FallbackFace is used when no size of the requested font fits.
var FallbackFace font.Face = basicfont.Face7x13

const fallbackSize = 13

// Resolver searches for the largest font size at which wrapped text fits a
// box.
type Resolver struct {
	WrapWidth    int
	MinSize      int
	Step         int
	SpacingRatio float64
	Logger       *slog.Logger
}

// NewResolver returns a resolver with the standard search: sizes from the
// initial size down while above 10, in steps of 2, lines wrapped at 20
// characters and spaced 0.3 of the size apart.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{
		WrapWidth:    DefaultWrapWidth,
		MinSize:      10,
		Step:         2,
		SpacingRatio: 0.3,
		Logger:       logging.OrNop(logger),
	}
}

// Fit returns the largest fitting size for text in box. When nothing fits,
// or a size cannot be measured, it returns the fallback face with text as a
// single unwrapped line.
func (r *Resolver) Fit(text string, box Box, f *Font, initialSize int) WrappedText {
	logger := logging.OrNop(r.Logger)
	if f == nil {
		logger.Warn("no font supplied, using fallback face")
		return r.fallback(text)
	}

	lines := WrapSentences(text, r.WrapWidth)
	step := max(r.Step, 1)

	for size := initialSize; size > r.MinSize; size -= step {
		face, err := f.Face(size)
		if err != nil {
			var gmErr *GlyphMeasureError
			if errors.As(err, &gmErr) {
				logger.Warn("glyph measurement failed, using fallback face",
					"font", gmErr.Font, "size", gmErr.Size, "error", gmErr.Err)
				return r.fallback(text)
			}
			logger.Warn("font face unavailable, using fallback face", "font", f.Name, "error", err)
			return r.fallback(text)
		}

		spacing := r.SpacingRatio * float64(size)
		if Measure(face, lines, spacing).Fits(box) {
			logger.Debug("text fitted", "font", f.Name, "size", size, "lines", len(lines))
			return WrappedText{
				Lines:   lines,
				Size:    size,
				Face:    face,
				Spacing: spacing,
			}
		}
	}

	logger.Warn("text does not fit at any size, using fallback face",
		"font", f.Name, "initial_size", initialSize,
		"max_width", box.MaxWidth, "max_height", box.MaxHeight)
	return r.fallback(text)
}

func (r *Resolver) fallback(text string) WrappedText {
	return WrappedText{
		Lines:    []string{text},
		Size:     fallbackSize,
		Face:     FallbackFace,
		Spacing:  r.SpacingRatio * fallbackSize,
		Fallback: true,
	}
}
