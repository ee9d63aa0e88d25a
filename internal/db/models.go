package db

import (
	"database/sql"
	"time"
)

// Quote is one corpus record. Artifact is set exactly when Used is true.
type Quote struct {
	ID               int64
	AuthorNameNative string
	AuthorNameLatin  string
	QuoteNative      string
	QuoteLatin       string
	Artifact         sql.NullString
	Used             bool
	UsedAt           sql.NullTime
	Enabled          bool
	CreatedAt        time.Time
}

// AuthorLine is the attribution rendered under the quote: "<native> <latin>".
func (q Quote) AuthorLine() string {
	switch {
	case q.AuthorNameNative == "":
		return q.AuthorNameLatin
	case q.AuthorNameLatin == "":
		return q.AuthorNameNative
	}
	return q.AuthorNameNative + " " + q.AuthorNameLatin
}

// Post records one successful publication of a card.
type Post struct {
	ID             int64
	QuoteID        int64
	Platform       string
	PlatformPostID sql.NullString
	PostUrl        sql.NullString
	ImageUrl       sql.NullString
	CreatedAt      time.Time
}
