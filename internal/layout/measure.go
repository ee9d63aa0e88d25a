package layout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LineMetrics holds the ink bounds of one rendered line, relative to its
// baseline origin.
type LineMetrics struct {
	Bounds fixed.Rectangle26_6
	Width  int
	Height int
}

// Metrics describes a measured block of lines.
type Metrics struct {
	Lines  []LineMetrics
	Width  int
	Height float64
}

// Measure returns the ink extent of each line and of the whole block, with
// spacing pixels between consecutive lines.
func Measure(face font.Face, lines []string, spacing float64) Metrics {
	m := Metrics{Lines: make([]LineMetrics, 0, len(lines))}
	for i, line := range lines {
		b, _ := font.BoundString(face, line)
		lm := LineMetrics{
			Bounds: b,
			Width:  (b.Max.X - b.Min.X).Ceil(),
			Height: (b.Max.Y - b.Min.Y).Ceil(),
		}
		m.Lines = append(m.Lines, lm)

		if lm.Width > m.Width {
			m.Width = lm.Width
		}
		m.Height += float64(lm.Height)
		if i > 0 {
			m.Height += spacing
		}
	}
	return m
}

// Fits reports whether the block lies inside box.
func (m Metrics) Fits(box Box) bool {
	return m.Width <= box.MaxWidth && m.Height <= float64(box.MaxHeight)
}
