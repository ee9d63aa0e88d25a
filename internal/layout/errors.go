package layout

import "fmt"

// FontLoadError reports a font file that is missing or cannot be parsed.
// It is fatal at startup.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("load font %s: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error {
	return e.Err
}

// GlyphMeasureError reports a face that could not be built or measured at a
// given size. The resolver treats it as a reason to fall back.
type GlyphMeasureError struct {
	Font string
	Size int
	Err  error
}

func (e *GlyphMeasureError) Error() string {
	return fmt.Sprintf("measure %s at size %d: %v", e.Font, e.Size, e.Err)
}

func (e *GlyphMeasureError) Unwrap() error {
	return e.Err
}
