package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func testFont(t *testing.T) *Font {
	t.Helper()
	f, err := ParseFont("goregular", goregular.TTF)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestLoadFont(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFont(filepath.Join(t.TempDir(), "missing.ttf"))
		var loadErr *FontLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Contains(t, loadErr.Path, "missing.ttf")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unparsable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.ttf")
		require.NoError(t, os.WriteFile(path, []byte("not a font"), 0o644))

		_, err := LoadFont(path)
		var loadErr *FontLoadError
		assert.ErrorAs(t, err, &loadErr)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "goregular.ttf")
		require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))

		f, err := LoadFont(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "goregular.ttf", f.Name)
	})
}

func TestFont_Face(t *testing.T) {
	f := testFont(t)

	t.Run("caches per size", func(t *testing.T) {
		a, err := f.Face(24)
		require.NoError(t, err)
		b, err := f.Face(24)
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		_, err := f.Face(0)
		var gmErr *GlyphMeasureError
		require.ErrorAs(t, err, &gmErr)
		assert.Equal(t, 0, gmErr.Size)
	})
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 20, nil},
		{"blank", "   ", 20, nil},
		{"single line", "hello world", 20, []string{"hello world"}},
		{"greedy break", "the quick brown fox jumps over", 10, []string{"the quick", "brown fox", "jumps over"}},
		{"collapses whitespace", "a   b\n\tc", 20, []string{"a b c"}},
		{"long word split", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"long word fills line", "ab cdefghij", 5, []string{"ab cd", "efghi", "j"}},
		{"counts runes", "가나다 라마바 사아자", 7, []string{"가나다 라마바", "사아자"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			assert.Equal(t, tt.want, got)
			for _, line := range got {
				assert.LessOrEqual(t, len([]rune(line)), tt.width)
			}
		})
	}
}

func TestWrapSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"periods restored", "A. B. C", []string{"A.", "B.", "C"}},
		{"trailing period", "A. B.", []string{"A.", "B."}},
		{"no period", "Know what you own", []string{"Know what you own"}},
		{"ellipsis kept", "Wait... then act", []string{"Wait...", "then act"}},
		{"leading period", ".A", []string{".", "A"}},
		{
			"long sentence wrapped",
			"Price is what you pay. Value is what you get.",
			[]string{"Price is what you", "pay.", "Value is what you", "get."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapSentences(tt.text, DefaultWrapWidth))
		})
	}

	t.Run("periods restored at every width", func(t *testing.T) {
		for width := 1; width <= 30; width++ {
			lines := WrapSentences("A. B. C", width)
			joined := strings.Join(lines, " ")
			assert.Equal(t, "A. B. C", joined, "width %d", width)
			assert.Equal(t, 2, strings.Count(joined, "."), "width %d", width)
		}
	})
}

func TestMeasure(t *testing.T) {
	f := testFont(t)
	face, err := f.Face(30)
	require.NoError(t, err)

	one := Measure(face, []string{"Hello"}, 9)
	two := Measure(face, []string{"Hello", "Hello"}, 9)

	assert.Greater(t, one.Width, 0)
	assert.Greater(t, one.Height, 0.0)
	assert.Equal(t, one.Width, two.Width)
	assert.InDelta(t, 2*one.Height+9, two.Height, 1e-9)

	empty := Measure(face, nil, 9)
	assert.Zero(t, empty.Width)
	assert.Zero(t, empty.Height)
}

func TestResolver_Fit(t *testing.T) {
	f := testFont(t)
	r := NewResolver(nil)

	t.Run("picks the largest fitting size", func(t *testing.T) {
		box := Box{MaxWidth: 300, MaxHeight: 120}
		text := "Rule No. 1 is never lose money"

		got := r.Fit(text, box, f, 60)
		require.False(t, got.Fallback)
		assert.True(t, got.Metrics().Fits(box))

		if next := got.Size + 2; next <= 60 {
			face, err := f.Face(next)
			require.NoError(t, err)
			assert.False(t, Measure(face, got.Lines, 0.3*float64(next)).Fits(box),
				"size %d should not fit", next)
		}
	})

	t.Run("initial size kept when it fits", func(t *testing.T) {
		got := r.Fit("Hi", Box{MaxWidth: 1000, MaxHeight: 1000}, f, 60)
		assert.False(t, got.Fallback)
		assert.Equal(t, 60, got.Size)
		assert.InDelta(t, 18.0, got.Spacing, 1e-9)
	})

	t.Run("forty-five characters fit the portrait box", func(t *testing.T) {
		text := "Be fearful when others are greedy, and so on!"
		require.Len(t, text, 45)
		require.NotContains(t, text, ".")

		box := BoxFor(600, 600)
		assert.Equal(t, Box{MaxWidth: 480, MaxHeight: 300}, box)

		got := r.Fit(text, box, f, 60)
		require.False(t, got.Fallback)
		assert.LessOrEqual(t, got.Size, 60)
		assert.Greater(t, got.Size, 10)

		assert.GreaterOrEqual(t, len(got.Lines), 2)

		m := got.Metrics()
		for i, lm := range m.Lines {
			assert.LessOrEqual(t, lm.Width, 480, "line %d", i)
		}
		assert.LessOrEqual(t, m.Width, 480)
		assert.LessOrEqual(t, m.Height, 300.0)
	})

	t.Run("falls back when nothing fits", func(t *testing.T) {
		text := strings.Repeat("unfittable words. ", 20)
		got := r.Fit(text, Box{MaxWidth: 5, MaxHeight: 5}, f, 60)

		assert.True(t, got.Fallback)
		assert.Equal(t, []string{text}, got.Lines)
		assert.Equal(t, FallbackFace, got.Face)
	})

	t.Run("falls back on glyph measurement failure", func(t *testing.T) {
		custom := NewResolver(nil)
		custom.MinSize = -10

		got := custom.Fit("A. B", Box{MaxWidth: 1000, MaxHeight: 1000}, f, 0)
		assert.True(t, got.Fallback)
		assert.Equal(t, []string{"A. B"}, got.Lines)
	})

	t.Run("nil font falls back", func(t *testing.T) {
		got := r.Fit("text", Box{MaxWidth: 100, MaxHeight: 100}, nil, 60)
		assert.True(t, got.Fallback)
	})
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		filename string
		want     Placement
	}{
		{"Warren Buffett_t01.jpg", PlacementTop},
		{"img/Warren Buffett/Warren Buffett_b2.jpg", PlacementBottom},
		{"Warren Buffett_c.jpg", PlacementCenter},
		{"Warren Buffett_.jpg", PlacementCenter},
		{"WarrenBuffett.jpg", PlacementCenter},
		{"Peter_Lynch_b.jpg", PlacementCenter},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePlacement(tt.filename))
		})
	}
}

func TestStartY(t *testing.T) {
	t.Run("top", func(t *testing.T) {
		assert.Equal(t, 20.0, StartY(PlacementTop, 600, 100))
		assert.Equal(t, 0.0, StartY(PlacementTop, 600, 200))
	})

	t.Run("bottom", func(t *testing.T) {
		assert.Equal(t, 350.0, StartY(PlacementBottom, 600, 100))
	})

	t.Run("center", func(t *testing.T) {
		assert.Equal(t, 220.0, StartY(PlacementCenter, 600, 100))
		assert.Equal(t, 219.0, StartY(PlacementCenter, 600, 101))
	})

	t.Run("tall blocks start at the top edge", func(t *testing.T) {
		assert.Equal(t, 0.0, StartY(PlacementTop, 600, 121))
		assert.Equal(t, 0.0, StartY(PlacementBottom, 600, 500))
		assert.Equal(t, 0.0, StartY(PlacementCenter, 100, 100))
	})

	t.Run("deterministic", func(t *testing.T) {
		for _, p := range []Placement{PlacementTop, PlacementBottom, PlacementCenter} {
			assert.Equal(t, StartY(p, 600, 123.4), StartY(p, 600, 123.4), p.String())
		}
	})
}
