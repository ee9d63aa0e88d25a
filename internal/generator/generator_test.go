package generator

import (
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdulachik/wisdomcard/internal/card"
	"github.com/abdulachik/wisdomcard/internal/db"
	"github.com/abdulachik/wisdomcard/internal/layout"
	"github.com/abdulachik/wisdomcard/internal/portrait"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

type fakeStore struct {
	quote  db.Quote
	err    error
	marked []db.MarkQuoteUsedParams
}

func (s *fakeStore) PickUnusedQuote(context.Context) (db.Quote, error) {
	return s.quote, s.err
}

func (s *fakeStore) MarkQuoteUsed(_ context.Context, arg db.MarkQuoteUsedParams) error {
	s.marked = append(s.marked, arg)
	return nil
}

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) RenderCard(string, string, string) (*image.NRGBA, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return imaging.New(20, 20, color.NRGBA{R: 10, A: 255}), nil
}

var fixedNow = time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

func TestSaveArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	img := imaging.New(8, 8, color.NRGBA{A: 255})

	first, err := SaveArtifact(img, dir, fixedNow, 95)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240309.jpeg"), first)

	second, err := SaveArtifact(img, dir, fixedNow, 95)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240309_1.jpeg"), second)

	third, err := SaveArtifact(img, dir, fixedNow, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240309_2.jpeg"), third)

	decoded, err := imaging.Open(first)
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	quote := db.Quote{ID: 7, AuthorNameLatin: "Warren Buffett", AuthorNameNative: "워렌 버핏", QuoteNative: "q"}

	t.Run("empty portrait dir aborts before rendering", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "img", "Warren Buffett"), 0o755))
		out := filepath.Join(root, "output")

		store := &fakeStore{quote: quote}
		renderer := &fakeRenderer{}
		g := &Generator{
			Store:     store,
			Portraits: portrait.Pool{Dir: filepath.Join(root, "img")},
			Renderer:  renderer,
			OutputDir: out,
		}

		_, err := g.Generate(ctx)
		assert.ErrorIs(t, err, portrait.ErrNoPortraits)
		assert.Zero(t, renderer.calls)
		assert.Empty(t, store.marked)

		_, statErr := os.Stat(out)
		assert.True(t, os.IsNotExist(statErr), "no output should be written")
	})

	t.Run("exhausted corpus", func(t *testing.T) {
		g := &Generator{Store: &fakeStore{err: sql.ErrNoRows}, Renderer: &fakeRenderer{}}
		_, err := g.Generate(ctx)
		assert.ErrorIs(t, err, ErrNoUnusedQuote)
	})

	t.Run("render failure leaves quote unused", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "Warren Buffett"), 0o755))
		require.NoError(t, imaging.Save(imaging.New(4, 4, color.NRGBA{A: 255}), filepath.Join(root, "Warren Buffett", "a_t.jpg")))

		store := &fakeStore{quote: quote}
		g := &Generator{
			Store:     store,
			Portraits: portrait.Pool{Dir: root},
			Renderer:  &fakeRenderer{err: errors.New("boom")},
			OutputDir: filepath.Join(root, "output"),
		}

		_, err := g.Generate(ctx)
		assert.Error(t, err)
		assert.Empty(t, store.marked)
	})

	t.Run("saves and marks", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "Warren Buffett"), 0o755))
		require.NoError(t, imaging.Save(imaging.New(4, 4, color.NRGBA{A: 255}), filepath.Join(root, "Warren Buffett", "a_t.jpg")))

		store := &fakeStore{quote: quote}
		g := &Generator{
			Store:     store,
			Portraits: portrait.Pool{Dir: root},
			Renderer:  &fakeRenderer{},
			OutputDir: filepath.Join(root, "output"),
			Rand:      rand.New(rand.NewPCG(1, 1)),
			Now:       func() time.Time { return fixedNow },
		}

		c, err := g.Generate(ctx)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "output", "20240309.jpeg"), c.Path)
		require.Len(t, store.marked, 1)
		assert.Equal(t, db.MarkQuoteUsedParams{ID: 7, Artifact: "20240309.jpeg", UsedAt: fixedNow}, store.marked[0])
	})
}

func TestGenerator_EndToEnd(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := db.NewStore(ctx, filepath.Join(root, "test.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	_, err = store.CreateQuote(ctx, db.CreateQuoteParams{
		AuthorNameNative: "피터 린치",
		AuthorNameLatin:  "Peter Lynch",
		QuoteNative:      "Know what you own, and know why you own it.",
	})
	require.NoError(t, err)

	imgDir := filepath.Join(root, "img")
	require.NoError(t, os.MkdirAll(filepath.Join(imgDir, "Peter Lynch"), 0o755))
	require.NoError(t, imaging.Save(
		imaging.New(600, 600, color.NRGBA{R: 60, G: 60, B: 60, A: 255}),
		filepath.Join(imgDir, "Peter Lynch", "Peter Lynch_b1.jpg"),
	))

	qf, err := layout.ParseFont("quote", goregular.TTF)
	require.NoError(t, err)
	af, err := layout.ParseFont("author", goregular.TTF)
	require.NoError(t, err)
	renderer := card.NewRendererWithFonts(qf, af, nil)
	defer renderer.Close()

	g := &Generator{
		Store:     store,
		Portraits: portrait.Pool{Dir: imgDir},
		Renderer:  renderer,
		OutputDir: filepath.Join(root, "output"),
		Now:       func() time.Time { return fixedNow },
	}

	c, err := g.Generate(ctx)
	require.NoError(t, err)

	out, err := imaging.Open(c.Path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 600), out.Bounds())

	got, err := store.GetQuote(ctx, c.Quote.ID)
	require.NoError(t, err)
	assert.True(t, got.Used)
	assert.Equal(t, "20240309.jpeg", got.Artifact.String)

	_, err = g.Generate(ctx)
	assert.ErrorIs(t, err, ErrNoUnusedQuote)
}
