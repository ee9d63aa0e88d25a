package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/wisdomcard/internal/generator"
	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/abdulachik/wisdomcard/internal/notify"
	"github.com/abdulachik/wisdomcard/internal/portrait"
	"github.com/abdulachik/wisdomcard/internal/poster"
	"github.com/abdulachik/wisdomcard/internal/publisher"
)

// CardGenerator produces one card per call.
type CardGenerator interface {
	Generate(ctx context.Context) (*generator.Card, error)
}

// CardPublisher publishes a produced card.
type CardPublisher interface {
	Publish(ctx context.Context, card *generator.Card) ([]publisher.Outcome, error)
	Posters() []poster.Poster
}

// PostCounter counts today's publications on a platform.
type PostCounter interface {
	CountPostsToday(ctx context.Context, platform string) (int64, error)
}

// CycleResult reports what one cycle did.
type CycleResult struct {
	Skipped  bool
	Card     *generator.Card
	Outcomes []publisher.Outcome
}

// Scheduler runs one generate+publish cycle per interval.
type Scheduler struct {
	generator      CardGenerator
	publisher      CardPublisher
	counter        PostCounter
	notifier       notify.Notifier
	interval       time.Duration
	maxPostsPerDay int
	capPlatform    string
	health         *Health
	logger         *slog.Logger

	lastPost time.Time
}

// Config holds scheduler configuration.
type Config struct {
	Generator CardGenerator
	Publisher CardPublisher
	Counter   PostCounter
	Notifier  notify.Notifier

	Interval       time.Duration
	MaxPostsPerDay int
	// CapPlatform is the platform whose posts count against the daily cap.
	// Defaults to the first poster of the publisher.
	CapPlatform string

	Logger *slog.Logger
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	capPlatform := cfg.CapPlatform
	if capPlatform == "" && cfg.Publisher != nil {
		if posters := cfg.Publisher.Posters(); len(posters) > 0 {
			capPlatform = posters[0].Platform()
		}
	}

	return &Scheduler{
		generator:      cfg.Generator,
		publisher:      cfg.Publisher,
		counter:        cfg.Counter,
		notifier:       cfg.Notifier,
		interval:       cfg.Interval,
		maxPostsPerDay: cfg.MaxPostsPerDay,
		capPlatform:    capPlatform,
		health:         NewHealth(),
		logger:         logging.OrNop(cfg.Logger),
	}
}

// Run starts the scheduler main loop. A cycle runs immediately, then once per
// interval until ctx is cancelled. Cycle failures never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"post_interval", s.interval,
		"max_posts_per_day", s.maxPostsPerDay,
		"cap_platform", s.capPlatform,
	)

	s.ValidateCredentials(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// ValidateCredentials checks every poster and records the result in health.
func (s *Scheduler) ValidateCredentials(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	for _, p := range s.publisher.Posters() {
		if err := p.ValidateCredentials(ctx); err != nil {
			s.health.SetUnhealthy(p.Platform(), err)
			s.logger.Error("failed to validate credentials", "platform", p.Platform(), "error", err)
			continue
		}
		s.health.SetHealthy(p.Platform(), "authenticated")
	}
}

// RunCycle generates one card and publishes it unless the daily cap is
// reached. Failures are recorded in health and sent to the notifier.
func (s *Scheduler) RunCycle(ctx context.Context) CycleResult {
	s.logger.Debug("running post cycle")

	if s.capReached(ctx) {
		return CycleResult{Skipped: true}
	}

	card, err := s.generator.Generate(ctx)
	if err != nil {
		switch {
		case errors.Is(err, generator.ErrNoUnusedQuote):
			s.logger.Warn("corpus exhausted, nothing to post")
			s.fail(ctx, "generate", err, "corpus exhausted", "every enabled quote already has a card")
		case errors.Is(err, portrait.ErrNoPortraits):
			s.logger.Warn("no portrait for author", "error", err)
			s.fail(ctx, "generate", err, "missing portraits", err.Error())
		default:
			s.logger.Error("generate failed", "error", err)
			s.fail(ctx, "generate", err, "card generation failed", err.Error())
		}
		return CycleResult{}
	}
	s.health.SetHealthy("generate", fmt.Sprintf("quote %d", card.Quote.ID))

	result := CycleResult{Card: card}
	if s.publisher == nil {
		return result
	}

	result.Outcomes, err = s.publisher.Publish(ctx, card)
	if err != nil {
		s.logger.Error("publish failed", "quote_id", card.Quote.ID, "error", err)
		s.fail(ctx, "publish", err, "publishing failed", err.Error())
		return result
	}

	s.health.SetHealthy("publish", "posted successfully")
	s.lastPost = time.Now()
	s.logger.Info("cycle complete", "quote_id", card.Quote.ID, "card", card.Path, "platforms", len(result.Outcomes))
	return result
}

// capReached reports whether today's posts already hit the cap. A counting
// error does not block the cycle.
func (s *Scheduler) capReached(ctx context.Context) bool {
	if s.counter == nil || s.maxPostsPerDay <= 0 || s.capPlatform == "" {
		return false
	}

	postsToday, err := s.counter.CountPostsToday(ctx, s.capPlatform)
	if err != nil {
		s.logger.Error("failed to count today's posts", "error", err)
		return false
	}
	if postsToday >= int64(s.maxPostsPerDay) {
		s.logger.Info("daily post limit reached", "posts_today", postsToday, "max", s.maxPostsPerDay)
		return true
	}
	return false
}

// fail marks component unhealthy and notifies the operator when it was not
// already failing, so a daemon stuck on the same error sends one message
// until the component recovers.
func (s *Scheduler) fail(ctx context.Context, component string, err error, subject, body string) {
	prev := s.health.GetStatus(component)
	s.health.SetUnhealthy(component, err)
	if prev != nil && !prev.Healthy {
		s.logger.Debug("component still failing, notification suppressed", "component", component)
		return
	}
	s.notify(ctx, subject, body)
}

func (s *Scheduler) notify(ctx context.Context, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notify.Notification{Subject: subject, Body: body}); err != nil {
		s.logger.Warn("failed to send notification", "error", err)
	}
}

// LastPost returns the time of the last fully published cycle.
func (s *Scheduler) LastPost() time.Time {
	return s.lastPost
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}
