package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "wisdom.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name_en,name_kr,wisdom_en,wisdom_kr\nPeter Lynch,피터 린치,Know what you own.,당신이 무엇을 소유하는지 알라.\n"), 0o644))

	return &config.Config{
		DatabasePath:  filepath.Join(dir, "data", "sqlite.db"),
		CorpusCSVPath: csvPath,
		ImageDir:      filepath.Join(dir, "img"),
		SourceDir:     filepath.Join(dir, "img", "source"),
		OutputDir:     filepath.Join(dir, "output"),
		FontDir:       filepath.Join(dir, "fonts"),
		QuoteFont:     "quote.ttf",
		AuthorFont:    "author.ttf",
		PortraitSize:  600,
		JPEGQuality:   95,
		DirMode:       0o755,
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	count, err := a.Store.CountQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	pre := a.Preprocessor()
	assert.Equal(t, cfg.SourceDir, pre.SourceDir)
	assert.Equal(t, 600, pre.Size)
}

func TestApp_Renderer_MissingFont(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Generator()
	var fontErr *layout.FontLoadError
	assert.ErrorAs(t, err, &fontErr)
}

func TestApp_Publisher(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		a, err := New(context.Background(), testConfig(t), nil)
		require.NoError(t, err)
		defer a.Close()

		assert.Empty(t, a.Publisher().Posters())
	})

	t.Run("all platforms", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.BaseURL = "https://example.com"
		cfg.InstagramAccessToken = "token"
		cfg.InstagramAccountID = "1784"
		cfg.BlueskyHandle = "cards.bsky.social"
		cfg.BlueskyAppPassword = "app-password"

		a, err := New(context.Background(), cfg, nil)
		require.NoError(t, err)
		defer a.Close()

		var platforms []string
		for _, p := range a.Publisher().Posters() {
			platforms = append(platforms, p.Platform())
		}
		assert.Equal(t, []string{"content_api", "instagram", "bluesky"}, platforms)
	})
}
