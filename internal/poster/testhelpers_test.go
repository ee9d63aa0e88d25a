package poster

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// writeCard saves a w×h JPEG and returns its path.
func writeCard(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "20240101.jpeg")
	require.NoError(t, imaging.Save(imaging.New(w, h, color.NRGBA{R: 90, G: 90, B: 90, A: 255}), path))
	return path
}
