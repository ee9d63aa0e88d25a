package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the prepared-statement-free query set.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries that runs inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const quoteColumns = `id, author_name_native, author_name_latin, quote_native, quote_latin,
	artifact, used, used_at, enabled, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (Quote, error) {
	var i Quote
	err := row.Scan(
		&i.ID,
		&i.AuthorNameNative,
		&i.AuthorNameLatin,
		&i.QuoteNative,
		&i.QuoteLatin,
		&i.Artifact,
		&i.Used,
		&i.UsedAt,
		&i.Enabled,
		&i.CreatedAt,
	)
	return i, err
}

const createQuote = `INSERT INTO quotes (author_name_native, author_name_latin, quote_native, quote_latin)
VALUES (?, ?, ?, ?)`

// CreateQuoteParams are the columns set at import time.
type CreateQuoteParams struct {
	AuthorNameNative string
	AuthorNameLatin  string
	QuoteNative      string
	QuoteLatin       string
}

// CreateQuote inserts a new unused quote.
func (q *Queries) CreateQuote(ctx context.Context, arg CreateQuoteParams) (Quote, error) {
	res, err := q.db.ExecContext(ctx, createQuote,
		arg.AuthorNameNative,
		arg.AuthorNameLatin,
		arg.QuoteNative,
		arg.QuoteLatin,
	)
	if err != nil {
		return Quote{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Quote{}, err
	}
	return q.GetQuote(ctx, id)
}

const getQuote = `SELECT ` + quoteColumns + ` FROM quotes WHERE id = ?`

// GetQuote returns the quote with the given id.
func (q *Queries) GetQuote(ctx context.Context, id int64) (Quote, error) {
	return scanQuote(q.db.QueryRowContext(ctx, getQuote, id))
}

const pickUnusedQuote = `SELECT ` + quoteColumns + `
FROM quotes
WHERE enabled = 1 AND used = 0 AND artifact IS NULL
ORDER BY RANDOM()
LIMIT 1`

// PickUnusedQuote returns a random enabled quote that has no card yet.
// Returns sql.ErrNoRows when the corpus is exhausted.
func (q *Queries) PickUnusedQuote(ctx context.Context) (Quote, error) {
	return scanQuote(q.db.QueryRowContext(ctx, pickUnusedQuote))
}

const markQuoteUsed = `UPDATE quotes
SET artifact = ?, used = 1, used_at = ?
WHERE id = ?`

// MarkQuoteUsedParams identifies the quote and the card produced for it.
type MarkQuoteUsedParams struct {
	ID       int64
	Artifact string
	UsedAt   time.Time
}

// MarkQuoteUsed records the produced card. Marking twice overwrites.
// Returns sql.ErrNoRows when no quote has the id.
func (q *Queries) MarkQuoteUsed(ctx context.Context, arg MarkQuoteUsedParams) error {
	res, err := q.db.ExecContext(ctx, markQuoteUsed, arg.Artifact, arg.UsedAt.UTC(), arg.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const setQuoteEnabled = `UPDATE quotes SET enabled = ? WHERE id = ?`

// SetQuoteEnabled hides or restores a quote for selection.
func (q *Queries) SetQuoteEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := q.db.ExecContext(ctx, setQuoteEnabled, enabled, id)
	return err
}

const countQuotes = `SELECT COUNT(*) FROM quotes`

// CountQuotes returns the corpus size.
func (q *Queries) CountQuotes(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countQuotes).Scan(&count)
	return count, err
}

const countUnusedQuotes = `SELECT COUNT(*) FROM quotes WHERE enabled = 1 AND used = 0`

// CountUnusedQuotes returns how many quotes can still be picked.
func (q *Queries) CountUnusedQuotes(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnusedQuotes).Scan(&count)
	return count, err
}

const countQuotesByAuthor = `SELECT author_name_latin, COUNT(*), COALESCE(SUM(used), 0)
FROM quotes
GROUP BY author_name_latin
ORDER BY author_name_latin`

// CountQuotesByAuthorRow is one row of CountQuotesByAuthor.
type CountQuotesByAuthorRow struct {
	AuthorNameLatin string
	Total           int64
	Used            int64
}

// CountQuotesByAuthor returns total and used counts per author.
func (q *Queries) CountQuotesByAuthor(ctx context.Context) ([]CountQuotesByAuthorRow, error) {
	rows, err := q.db.QueryContext(ctx, countQuotesByAuthor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CountQuotesByAuthorRow
	for rows.Next() {
		var i CountQuotesByAuthorRow
		if err := rows.Scan(&i.AuthorNameLatin, &i.Total, &i.Used); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listAuthors = `SELECT DISTINCT author_name_latin FROM quotes ORDER BY author_name_latin`

// ListAuthors returns the distinct latin author names in the corpus.
func (q *Queries) ListAuthors(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listAuthors)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const postColumns = `id, quote_id, platform, platform_post_id, post_url, image_url, created_at`

func scanPost(row rowScanner) (Post, error) {
	var i Post
	err := row.Scan(
		&i.ID,
		&i.QuoteID,
		&i.Platform,
		&i.PlatformPostID,
		&i.PostUrl,
		&i.ImageUrl,
		&i.CreatedAt,
	)
	return i, err
}

const createPost = `INSERT INTO posts (quote_id, platform, platform_post_id, post_url, image_url)
VALUES (?, ?, ?, ?, ?)`

const getPost = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

// CreatePostParams describes a publication.
type CreatePostParams struct {
	QuoteID        int64
	Platform       string
	PlatformPostID sql.NullString
	PostUrl        sql.NullString
	ImageUrl       sql.NullString
}

// CreatePost records a publication.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	res, err := q.db.ExecContext(ctx, createPost,
		arg.QuoteID,
		arg.Platform,
		arg.PlatformPostID,
		arg.PostUrl,
		arg.ImageUrl,
	)
	if err != nil {
		return Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, err
	}
	return scanPost(q.db.QueryRowContext(ctx, getPost, id))
}

const countPostsToday = `SELECT COUNT(*) FROM posts
WHERE platform = ? AND created_at >= date('now')`

// CountPostsToday counts publications on platform since UTC midnight.
func (q *Queries) CountPostsToday(ctx context.Context, platform string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPostsToday, platform).Scan(&count)
	return count, err
}

const countPosts = `SELECT COUNT(*) FROM posts`

// CountPosts returns the number of recorded publications.
func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&count)
	return count, err
}

const listPostsByQuote = `SELECT ` + postColumns + `
FROM posts WHERE quote_id = ? ORDER BY id`

// ListPostsByQuote returns the publications of one quote's card.
func (q *Queries) ListPostsByQuote(ctx context.Context, quoteID int64) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listPostsByQuote, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Post
	for rows.Next() {
		i, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
