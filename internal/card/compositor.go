// Package card draws quote cards: a darkened portrait with the quote and
// its attribution centered over it.
package card

import (
	"image"
	"image/color"

	"github.com/abdulachik/wisdomcard/internal/layout"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	scrimColor  = color.NRGBA{A: 128}
	shadowColor = color.NRGBA{A: 180}
	textColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Compositor draws fitted text over a background. It does no I/O.
type Compositor struct {
	ShadowOffset int
	AuthorGap    int
}

// NewCompositor returns a compositor with a 2px shadow and the author line
// 20px below the cursor after the last quote line, spacing included.
func NewCompositor() *Compositor {
	return &Compositor{ShadowOffset: 2, AuthorGap: 20}
}

// Render returns a new opaque image: background under a half-transparent
// black scrim, the quote lines centered horizontally starting at the height
// given by placement, and "- author -" below them. The first line gets an
// opening quotation mark and the last line a closing one.
func (c *Compositor) Render(background image.Image, quote layout.WrappedText, author string, authorFace font.Face, placement layout.Placement) *image.NRGBA {
	img := imaging.Clone(background)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	img = imaging.Overlay(img, imaging.New(w, h, scrimColor), image.Point{}, 1.0)

	lines := QuotedLines(quote.Lines)
	block := layout.Measure(quote.Face, lines, quote.Spacing)
	y := layout.StartY(placement, h, block.Height)

	for i, line := range lines {
		lm := block.Lines[i]
		x := (w - lm.Width) / 2
		c.drawLine(img, quote.Face, line, lm, x, y)
		y += float64(lm.Height) + quote.Spacing
	}

	attribution := "- " + author + " -"
	am := layout.Measure(authorFace, []string{attribution}, 0).Lines[0]
	c.drawLine(img, authorFace, attribution, am, (w-am.Width)/2, y+float64(c.AuthorGap))

	flat := imaging.New(w, h, color.NRGBA{A: 255})
	return imaging.Overlay(flat, img, image.Point{}, 1.0)
}

// QuotedLines returns a copy of lines with `"` prepended to the first line
// and appended to the last.
func QuotedLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	copy(out, lines)
	out[0] = `"` + out[0]
	out[len(out)-1] += `"`
	return out
}

// drawLine draws line twice, shadow then text, with its ink box's top-left
// corner at (x, y).
func (c *Compositor) drawLine(dst *image.NRGBA, face font.Face, line string, lm layout.LineMetrics, x int, y float64) {
	origin := fixed.Point26_6{
		X: fixed.I(x) - lm.Bounds.Min.X,
		Y: fixed.Int26_6(y*64) - lm.Bounds.Min.Y,
	}
	offset := fixed.I(c.ShadowOffset)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(shadowColor),
		Face: face,
		Dot:  fixed.Point26_6{X: origin.X + offset, Y: origin.Y + offset},
	}
	d.DrawString(line)

	d.Src = image.NewUniform(textColor)
	d.Dot = origin
	d.DrawString(line)
}
