// Package portrait prepares author photos as square card backgrounds and
// selects them for rendering.
package portrait

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/disintegration/imaging"
)

// DefaultSize is the edge length of a prepared portrait.
const DefaultSize = 600

// sourceExtensions are the raw photo formats the preprocessor reads.
var sourceExtensions = []string{".jpg", ".jpeg", ".png"}

// Normalize fits src into a target×target square: the image is scaled so its
// longer side equals target, centered on a canvas filled with the darkened
// mean of its edge pixels, and converted to grayscale.
func Normalize(src image.Image, target int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	newW, newH := target, target
	if w >= h {
		newH = max(h*target/w, 1)
	} else {
		newW = max(w*target/h, 1)
	}

	resized := imaging.Resize(src, newW, newH, imaging.Lanczos)
	fill := edgeColor(resized)

	canvas := imaging.New(target, target, fill)
	canvas = imaging.Paste(canvas, resized, image.Pt((target-newW)/2, (target-newH)/2))

	return imaging.Grayscale(canvas)
}

// edgeColor averages the top row, bottom row, left column and right column
// (corners count twice) and scales each channel by 0.7.
func edgeColor(img *image.NRGBA) color.NRGBA {
	b := img.Bounds()
	var r, g, bl, n int

	add := func(x, y int) {
		c := img.NRGBAAt(x, y)
		r += int(c.R)
		g += int(c.G)
		bl += int(c.B)
		n++
	}

	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Min.Y)
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Max.Y-1)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		add(b.Min.X, y)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		add(b.Max.X-1, y)
	}

	if n == 0 {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{
		R: uint8(r / n * 7 / 10),
		G: uint8(g / n * 7 / 10),
		B: uint8(bl / n * 7 / 10),
		A: 0xff,
	}
}

// Preprocessor turns raw photos in SourceDir into prepared portraits under
// ImageDir/<author>.
type Preprocessor struct {
	SourceDir string
	ImageDir  string
	Size      int
	Quality   int
	DirMode   fs.FileMode
	Logger    *slog.Logger
}

// Summary counts the outcome of a batch.
type Summary struct {
	Processed int
	Existing  int
	Skipped   int
}

// ProcessDir prepares every source photo whose file name starts with one of
// authors. Portraits that already exist are left alone. Photos that cannot
// be decoded are logged and skipped.
func (p *Preprocessor) ProcessDir(ctx context.Context, authors []string) (Summary, error) {
	logger := logging.OrNop(p.Logger)

	entries, err := os.ReadDir(p.SourceDir)
	if err != nil {
		return Summary{}, fmt.Errorf("read source dir: %w", err)
	}

	var sum Summary
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if entry.IsDir() || !hasExtension(entry.Name(), sourceExtensions) {
			continue
		}

		author, ok := MatchAuthor(entry.Name(), authors)
		if !ok {
			logger.Debug("no author for source photo", "file", entry.Name())
			continue
		}

		src := filepath.Join(p.SourceDir, entry.Name())
		out := p.OutputPath(author, entry.Name())
		if _, err := os.Stat(out); err == nil {
			sum.Existing++
			continue
		}

		if err := p.process(src, out); err != nil {
			logger.Warn("skipping source photo", "file", src, "error", err)
			sum.Skipped++
			continue
		}
		logger.Info("prepared portrait", "author", author, "output", out)
		sum.Processed++
	}

	return sum, nil
}

// ProcessFile prepares one source photo for author, replacing any existing
// portrait, and returns the output path.
func (p *Preprocessor) ProcessFile(src, author string) (string, error) {
	out := p.OutputPath(author, filepath.Base(src))
	if err := p.process(src, out); err != nil {
		return "", err
	}
	return out, nil
}

// OutputPath is where the portrait for a source file name is written. The
// base name is kept so its placement token survives.
func (p *Preprocessor) OutputPath(author, sourceName string) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	return filepath.Join(p.ImageDir, author, base+".jpg")
}

func (p *Preprocessor) process(src, out string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	size := p.Size
	if size <= 0 {
		size = DefaultSize
	}
	normalized := Normalize(img, size)

	mode := p.DirMode
	if mode == 0 {
		mode = 0o755
	}
	if err := os.MkdirAll(filepath.Dir(out), mode); err != nil {
		return fmt.Errorf("create portrait dir: %w", err)
	}

	quality := p.Quality
	if quality <= 0 {
		quality = 95
	}
	if err := imaging.Save(normalized, out, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	return nil
}

// MatchAuthor returns the longest author name that prefixes fileName.
func MatchAuthor(fileName string, authors []string) (string, bool) {
	var best string
	for _, a := range authors {
		if a != "" && strings.HasPrefix(fileName, a) && len(a) > len(best) {
			best = a
		}
	}
	return best, best != ""
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
