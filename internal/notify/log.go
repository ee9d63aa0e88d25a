package notify

import (
	"context"
	"log/slog"

	"github.com/abdulachik/wisdomcard/internal/logging"
)

// LogNotifier delivers notifications to the operator log. The record carries
// the recipient handle so an external log shipper can route it.
type LogNotifier struct {
	toHandle string
	logger   *slog.Logger
}

// LogConfig holds configuration for log notifications.
type LogConfig struct {
	ToHandle string // Operator handle the notification is meant for
	Logger   *slog.Logger
}

// NewLogNotifier creates a new log notifier.
func NewLogNotifier(cfg LogConfig) *LogNotifier {
	return &LogNotifier{
		toHandle: cfg.ToHandle,
		logger:   logging.OrNop(cfg.Logger),
	}
}

// Send writes the notification as a warning record.
func (n *LogNotifier) Send(ctx context.Context, notification Notification) error {
	n.logger.WarnContext(ctx, "notification",
		"to", n.toHandle,
		"subject", notification.Subject,
		"body", notification.Body,
	)
	return nil
}
