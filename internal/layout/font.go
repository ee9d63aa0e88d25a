package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Font is a parsed OpenType/TrueType font with faces cached per pixel size.
// It is not safe for concurrent use.
type Font struct {
	Name   string
	parsed *opentype.Font
	faces  map[int]font.Face
}

// LoadFont reads and parses the font at path.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	f, err := ParseFont(filepath.Base(path), data)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	return f, nil
}

// ParseFont parses raw font bytes.
func ParseFont(name string, data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, &FontLoadError{Path: name, Err: errors.New("empty font data")}
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, &FontLoadError{Path: name, Err: fmt.Errorf("parse font: %w", err)}
	}
	return &Font{
		Name:   name,
		parsed: parsed,
		faces:  make(map[int]font.Face),
	}, nil
}

// Face returns the face for size pixels (72 DPI, so points equal pixels).
func (f *Font) Face(size int) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	if size <= 0 {
		return nil, &GlyphMeasureError{Font: f.Name, Size: size, Err: errors.New("size must be positive")}
	}

	face, err := opentype.NewFace(f.parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &GlyphMeasureError{Font: f.Name, Size: size, Err: err}
	}
	f.faces[size] = face
	return face, nil
}

// Close releases every cached face.
func (f *Font) Close() error {
	var errs []error
	for size, face := range f.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(f.faces, size)
	}
	return errors.Join(errs...)
}
