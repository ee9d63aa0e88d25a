package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/wisdomcard/internal/card"
	"github.com/abdulachik/wisdomcard/internal/config"
	"github.com/abdulachik/wisdomcard/internal/db"
	"github.com/abdulachik/wisdomcard/internal/generator"
	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/abdulachik/wisdomcard/internal/notify"
	"github.com/abdulachik/wisdomcard/internal/portrait"
	"github.com/abdulachik/wisdomcard/internal/poster"
	"github.com/abdulachik/wisdomcard/internal/publisher"
	"github.com/abdulachik/wisdomcard/internal/retry"
	"github.com/abdulachik/wisdomcard/internal/scheduler"
)

// App is the main application container holding all dependencies.
// Fonts are loaded on first use so that commands which never render do not
// need them.
type App struct {
	Config *config.Config
	Store  *db.Store
	Logger *slog.Logger

	renderer *card.Renderer
}

// New opens the database, applies migrations and imports the corpus CSV when
// the quotes table is empty.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	ctx = logging.WithContext(ctx, logger)

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	if _, err := store.Bootstrap(ctx, cfg.CorpusCSVPath); err != nil {
		store.Close()
		return nil, fmt.Errorf("bootstrap corpus: %w", err)
	}

	return &App{
		Config: cfg,
		Store:  store,
		Logger: logger,
	}, nil
}

// Preprocessor returns the portrait preprocessor for the configured
// directories.
func (a *App) Preprocessor() *portrait.Preprocessor {
	return &portrait.Preprocessor{
		SourceDir: a.Config.SourceDir,
		ImageDir:  a.Config.ImageDir,
		Size:      a.Config.PortraitSize,
		Quality:   a.Config.JPEGQuality,
		DirMode:   a.Config.DirMode,
		Logger:    a.Logger,
	}
}

// Renderer loads the fonts once and returns the card renderer.
func (a *App) Renderer() (*card.Renderer, error) {
	if a.renderer != nil {
		return a.renderer, nil
	}
	r, err := card.NewRenderer(a.Config.QuoteFontPath(), a.Config.AuthorFontPath(), a.Logger)
	if err != nil {
		return nil, err
	}
	a.renderer = r
	return r, nil
}

// Generator returns a card generator backed by the store and portrait pool.
func (a *App) Generator() (*generator.Generator, error) {
	r, err := a.Renderer()
	if err != nil {
		return nil, err
	}
	return &generator.Generator{
		Store:     a.Store,
		Portraits: portrait.Pool{Dir: a.Config.ImageDir},
		Renderer:  r,
		OutputDir: a.Config.OutputDir,
		Quality:   a.Config.JPEGQuality,
		Logger:    a.Logger,
	}, nil
}

// Publisher returns the publishing workflow for the configured platforms.
// The content API is used when BASE_URL is set, Instagram when its account
// is configured and Bluesky when its credentials are.
func (a *App) Publisher() *publisher.Publisher {
	cfg := a.Config
	p := &publisher.Publisher{
		Store:  a.Store,
		Logger: a.Logger,
	}

	if cfg.BaseURL != "" {
		p.Uploader = poster.NewContentAPIPoster(poster.ContentAPIConfig{
			BaseURL:  cfg.BaseURL,
			Category: cfg.ContentCategory,
			Writer:   cfg.ContentWriter,
			Logger:   a.Logger,
		})
	}

	if cfg.InstagramAccessToken != "" && cfg.InstagramAccountID != "" {
		p.Social = append(p.Social, poster.NewInstagramPoster(poster.InstagramConfig{
			AccessToken: cfg.InstagramAccessToken,
			AccountID:   cfg.InstagramAccountID,
			APIVersion:  cfg.InstagramAPIVersion,
			Probe: retry.Policy{
				Attempts: cfg.ImageCheckAttempts,
				Delay:    cfg.ImageCheckDelay,
			},
			Logger: a.Logger,
		}))
	}

	if cfg.BlueskyEnabled() {
		p.Social = append(p.Social, poster.NewBlueskyPoster(poster.BlueskyConfig{
			Handle:      cfg.BlueskyHandle,
			AppPassword: cfg.BlueskyAppPassword,
			Logger:      a.Logger,
		}))
	}

	return p
}

// Scheduler returns the daemon loop wired to the generator and publisher.
// The daily cap counts Instagram posts, the primary platform.
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	gen, err := a.Generator()
	if err != nil {
		return nil, err
	}
	return scheduler.New(scheduler.Config{
		Generator:      gen,
		Publisher:      a.Publisher(),
		Counter:        a.Store,
		Notifier:       notify.NewLogNotifier(notify.LogConfig{ToHandle: a.Config.NotifyHandle, Logger: a.Logger}),
		Interval:       a.Config.PostInterval,
		MaxPostsPerDay: a.Config.MaxPostsPerDay,
		CapPlatform:    "instagram",
		Logger:         a.Logger,
	}), nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
