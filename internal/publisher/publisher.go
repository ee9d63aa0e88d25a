// Package publisher sends a rendered card to the content API and the social
// platforms and records every successful publication.
package publisher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/wisdomcard/internal/db"
	"github.com/abdulachik/wisdomcard/internal/generator"
	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/abdulachik/wisdomcard/internal/poster"
)

// ErrNoImageURL is returned for platforms that need a public image URL when
// the content API upload did not produce one.
var ErrNoImageURL = errors.New("no public image url")

// PostRecorder stores publications.
type PostRecorder interface {
	CreatePost(ctx context.Context, arg db.CreatePostParams) (db.Post, error)
}

// Outcome is the result of publishing a card to one platform.
type Outcome struct {
	Platform string
	Result   *poster.PostResult
	Err      error
}

// Publisher runs the publishing workflow for one card.
type Publisher struct {
	// Uploader hosts the image and returns its public URL. Optional.
	Uploader poster.Poster
	// Social are the platforms the card is posted to, in order.
	Social []poster.Poster
	Store  PostRecorder
	Now    func() time.Time
	Logger *slog.Logger
}

// Posters returns every configured poster, uploader first.
func (p *Publisher) Posters() []poster.Poster {
	var all []poster.Poster
	if p.Uploader != nil {
		all = append(all, p.Uploader)
	}
	return append(all, p.Social...)
}

// Publish uploads the card, posts it to each social platform and records each
// success. A failing platform does not stop the others; the returned error
// joins every failure.
func (p *Publisher) Publish(ctx context.Context, card *generator.Card) ([]Outcome, error) {
	logger := logging.OrNop(p.Logger)
	text := cardText(card.Quote)
	now := p.now()

	var (
		outcomes []Outcome
		errs     []error
		imageURL string
	)

	if p.Uploader != nil {
		result, err := p.Uploader.Post(ctx, poster.PostContent{
			Title:     poster.FormatTitle(now, text),
			Body:      poster.FormatContentHTML(text),
			ImagePath: card.Path,
		})
		outcome := p.finish(ctx, card, p.Uploader.Platform(), result, err)
		if outcome.Err != nil {
			errs = append(errs, outcome.Err)
		} else {
			imageURL = result.ImageURL
		}
		outcomes = append(outcomes, outcome)
	}

	for _, social := range p.Social {
		platform := social.Platform()
		content := poster.PostContent{
			AltText:   text.Attribution(),
			ImagePath: card.Path,
		}

		switch platform {
		case "instagram":
			if imageURL == "" {
				err := fmt.Errorf("post to %s: %w", platform, ErrNoImageURL)
				logger.Warn("skipping platform", "platform", platform, "error", err)
				outcomes = append(outcomes, Outcome{Platform: platform, Err: err})
				errs = append(errs, err)
				continue
			}
			content.Caption = poster.FormatCaption(text)
			content.ImageURLs = []string{imageURL}
		case "bluesky":
			content.Caption = poster.FormatShortCaption(text, poster.BlueskyMaxLength)
		default:
			content.Caption = poster.FormatCaption(text)
		}

		result, err := social.Post(ctx, content)
		outcome := p.finish(ctx, card, platform, result, err)
		if outcome.Err != nil {
			errs = append(errs, outcome.Err)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, errors.Join(errs...)
}

// finish records a successful publication and builds the outcome.
func (p *Publisher) finish(ctx context.Context, card *generator.Card, platform string, result *poster.PostResult, err error) Outcome {
	logger := logging.OrNop(p.Logger)

	if err != nil {
		logger.Error("publish failed", "platform", platform, "quote_id", card.Quote.ID, "error", err)
		return Outcome{Platform: platform, Err: fmt.Errorf("post to %s: %w", platform, err)}
	}

	logger.Info("published card",
		"platform", platform,
		"quote_id", card.Quote.ID,
		"post_id", result.PostID,
		"url", result.PostURL)

	if _, err := p.Store.CreatePost(ctx, db.CreatePostParams{
		QuoteID:        card.Quote.ID,
		Platform:       platform,
		PlatformPostID: nullString(result.PostID),
		PostUrl:        nullString(result.PostURL),
		ImageUrl:       nullString(result.ImageURL),
	}); err != nil {
		return Outcome{Platform: platform, Result: result, Err: fmt.Errorf("record %s post: %w", platform, err)}
	}

	return Outcome{Platform: platform, Result: result}
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func cardText(q db.Quote) poster.CardText {
	return poster.CardText{
		AuthorNative: q.AuthorNameNative,
		AuthorLatin:  q.AuthorNameLatin,
		QuoteNative:  q.QuoteNative,
		QuoteLatin:   q.QuoteLatin,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
