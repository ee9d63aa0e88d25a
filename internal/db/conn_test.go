package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory and database", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "subdir", "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)

		var result int
		err = store.QueryRowContext(ctx, "SELECT 1").Scan(&result)
		assert.NoError(t, err)
		assert.Equal(t, 1, result)
	})

	t.Run("sets WAL mode", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer store.Close()

		var mode string
		err = store.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode)
		assert.NoError(t, err)
		assert.Equal(t, "wal", mode)
	})

	t.Run("enables foreign keys", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer store.Close()

		var fk int
		err = store.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk)
		assert.NoError(t, err)
		assert.Equal(t, 1, fk)
	})
}

func TestStore_Migrate(t *testing.T) {
	t.Run("applies migrations", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		for _, table := range []string{"quotes", "posts"} {
			var name string
			err := store.QueryRowContext(ctx,
				"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			assert.NoError(t, err)
			assert.Equal(t, table, name)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		require.NoError(t, store.Migrate(ctx))

		count, err := store.CountQuotes(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestExtractUpMigration(t *testing.T) {
	t.Run("extracts up portion", func(t *testing.T) {
		content := `-- +migrate Up
CREATE TABLE test (id INTEGER);

-- +migrate Down
DROP TABLE test;
`
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", extractUpMigration(content))
	})

	t.Run("handles no down marker", func(t *testing.T) {
		content := "CREATE TABLE test (id INTEGER);"
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", extractUpMigration(content))
	})
}

func TestQuotes(t *testing.T) {
	ctx := context.Background()

	t.Run("pick returns no rows on empty corpus", func(t *testing.T) {
		store := NewTestStore(t)
		_, err := store.PickUnusedQuote(ctx)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("mark used hides quote from selection", func(t *testing.T) {
		store := NewTestStore(t)
		q, err := store.CreateQuote(ctx, CreateQuoteParams{
			AuthorNameNative: "워렌 버핏",
			AuthorNameLatin:  "Warren Buffett",
			QuoteNative:      "가격은 당신이 지불하는 것이고, 가치는 당신이 얻는 것이다.",
			QuoteLatin:       "Price is what you pay. Value is what you get.",
		})
		require.NoError(t, err)
		assert.False(t, q.Used)
		assert.False(t, q.Artifact.Valid)
		assert.True(t, q.Enabled)

		picked, err := store.PickUnusedQuote(ctx)
		require.NoError(t, err)
		assert.Equal(t, q.ID, picked.ID)

		usedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, store.MarkQuoteUsed(ctx, MarkQuoteUsedParams{
			ID: q.ID, Artifact: "20240501.jpeg", UsedAt: usedAt,
		}))

		got, err := store.GetQuote(ctx, q.ID)
		require.NoError(t, err)
		assert.True(t, got.Used)
		assert.Equal(t, "20240501.jpeg", got.Artifact.String)
		require.True(t, got.UsedAt.Valid)
		assert.True(t, usedAt.Equal(got.UsedAt.Time))

		_, err = store.PickUnusedQuote(ctx)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		unused, err := store.CountUnusedQuotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), unused)
	})

	t.Run("re-marking overwrites the artifact", func(t *testing.T) {
		store := NewTestStore(t)
		q, err := store.CreateQuote(ctx, CreateQuoteParams{AuthorNameLatin: "Peter Lynch", AuthorNameNative: "피터 린치", QuoteNative: "a"})
		require.NoError(t, err)

		require.NoError(t, store.MarkQuoteUsed(ctx, MarkQuoteUsedParams{ID: q.ID, Artifact: "first.jpeg", UsedAt: time.Now()}))
		require.NoError(t, store.MarkQuoteUsed(ctx, MarkQuoteUsedParams{ID: q.ID, Artifact: "second.jpeg", UsedAt: time.Now()}))

		got, err := store.GetQuote(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, "second.jpeg", got.Artifact.String)
	})

	t.Run("mark unknown id", func(t *testing.T) {
		store := NewTestStore(t)
		err := store.MarkQuoteUsed(ctx, MarkQuoteUsedParams{ID: 999, Artifact: "x.jpeg", UsedAt: time.Now()})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("disabled quotes are never picked", func(t *testing.T) {
		store := NewTestStore(t)
		q, err := store.CreateQuote(ctx, CreateQuoteParams{AuthorNameLatin: "Ken Fisher", AuthorNameNative: "켄 피셔", QuoteNative: "a"})
		require.NoError(t, err)
		require.NoError(t, store.SetQuoteEnabled(ctx, q.ID, false))

		_, err = store.PickUnusedQuote(ctx)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("artifact without used flag is rejected", func(t *testing.T) {
		store := NewTestStore(t)
		q, err := store.CreateQuote(ctx, CreateQuoteParams{AuthorNameLatin: "Seth Klarman", QuoteNative: "a"})
		require.NoError(t, err)

		_, err = store.ExecContext(ctx, "UPDATE quotes SET artifact = 'x.jpeg' WHERE id = ?", q.ID)
		assert.Error(t, err)
	})

	t.Run("counts by author", func(t *testing.T) {
		store := NewTestStore(t)
		for _, name := range []string{"B", "A", "A"} {
			_, err := store.CreateQuote(ctx, CreateQuoteParams{AuthorNameLatin: name, QuoteNative: "q"})
			require.NoError(t, err)
		}

		rows, err := store.CountQuotesByAuthor(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, CountQuotesByAuthorRow{AuthorNameLatin: "A", Total: 2}, rows[0])

		authors, err := store.ListAuthors(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, authors)
	})
}

func TestPosts(t *testing.T) {
	ctx := context.Background()
	store := NewTestStore(t)

	q, err := store.CreateQuote(ctx, CreateQuoteParams{AuthorNameLatin: "Charlie Munger", QuoteNative: "q"})
	require.NoError(t, err)

	post, err := store.CreatePost(ctx, CreatePostParams{
		QuoteID:        q.ID,
		Platform:       "instagram",
		PlatformPostID: sql.NullString{String: "17890", Valid: true},
		ImageUrl:       sql.NullString{String: "https://example.com/a.jpeg", Valid: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "instagram", post.Platform)

	today, err := store.CountPostsToday(ctx, "instagram")
	require.NoError(t, err)
	assert.Equal(t, int64(1), today)

	other, err := store.CountPostsToday(ctx, "bluesky")
	require.NoError(t, err)
	assert.Equal(t, int64(0), other)

	posts, err := store.ListPostsByQuote(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "17890", posts[0].PlatformPostID.String)

	total, err := store.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("imports complete rows and skips the rest", func(t *testing.T) {
		store := NewTestStore(t)
		csvData := strings.Join([]string{
			"name_en,name_kr,wisdom_en,wisdom_kr",
			`Warren Buffett,워렌 버핏,"Rule No. 1: never lose money.","규칙 1: 절대 돈을 잃지 마라."`,
			"Peter Lynch,피터 린치,Know what you own.,당신이 무엇을 소유하는지 알라.",
			"incomplete,row",
		}, "\n")

		n, err := store.ImportCSV(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		count, err := store.CountQuotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		q, err := store.GetQuote(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Warren Buffett", q.AuthorNameLatin)
		assert.Equal(t, "워렌 버핏", q.AuthorNameNative)
		assert.Equal(t, "Rule No. 1: never lose money.", q.QuoteLatin)
		assert.Equal(t, "워렌 버핏 Warren Buffett", q.AuthorLine())
	})

	t.Run("empty input", func(t *testing.T) {
		store := NewTestStore(t)
		n, err := store.ImportCSV(ctx, strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("missing csv is not an error", func(t *testing.T) {
		store := NewTestStore(t)
		n, err := store.Bootstrap(ctx, filepath.Join(t.TempDir(), "missing.csv"))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("imports only into an empty corpus", func(t *testing.T) {
		store := NewTestStore(t)
		path := filepath.Join(t.TempDir(), "wisdom.csv")
		require.NoError(t, os.WriteFile(path, []byte("h1,h2,h3,h4\nA,가,q,질문\n"), 0o644))

		n, err := store.Bootstrap(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = store.Bootstrap(ctx, path)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestQuote_AuthorLine(t *testing.T) {
	assert.Equal(t, "Benjamin Graham", Quote{AuthorNameLatin: "Benjamin Graham"}.AuthorLine())
	assert.Equal(t, "벤저민 그레이엄", Quote{AuthorNameNative: "벤저민 그레이엄"}.AuthorLine())
}

// NewTestStore provides a migrated test database.
func NewTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	ctx := context.Background()
	store, err := NewStore(ctx, dbPath)
	require.NoError(t, err)

	err = store.Migrate(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
