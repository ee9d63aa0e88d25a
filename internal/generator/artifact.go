package generator

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultQuality is the JPEG quality of saved cards.
const DefaultQuality = 95

// SaveArtifact writes img as dir/YYYYMMDD.jpeg, or YYYYMMDD_1.jpeg,
// YYYYMMDD_2.jpeg ... when earlier names are taken, and returns the path.
func SaveArtifact(img image.Image, dir string, now time.Time, quality int) (string, error) {
	if quality <= 0 {
		quality = DefaultQuality
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	stem := now.Format("20060102")
	for n := 0; ; n++ {
		name := stem + ".jpeg"
		if n > 0 {
			name = fmt.Sprintf("%s_%d.jpeg", stem, n)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create artifact: %w", err)
		}

		if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("encode artifact: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close artifact: %w", err)
		}
		return path, nil
	}
}
