package poster

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CompressOptions bounds an uploaded image.
type CompressOptions struct {
	MaxWidth   int
	MaxBytes   int
	Quality    int
	MinQuality int
	Step       int
}

// DefaultCompressOptions: at most 800px wide, JPEG quality 85 lowered by 10
// while the result is over 1 MiB and the quality is above 30.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{
		MaxWidth:   800,
		MaxBytes:   1 << 20,
		Quality:    85,
		MinQuality: 30,
		Step:       10,
	}
}

// CompressImage reads the image at path and returns it as JPEG bytes within
// opts. The size bound is best effort: the last attempt is returned even if
// it is still too large.
func CompressImage(path string, opts CompressOptions) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}

	quality := opts.Quality
	data, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}
	for opts.MaxBytes > 0 && len(data) > opts.MaxBytes && quality > opts.MinQuality {
		quality -= max(opts.Step, 1)
		if data, err = encodeJPEG(img, quality); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
