package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogNotifier(t *testing.T) {
	n := NewLogNotifier(LogConfig{ToHandle: "ops.bsky.social"})

	assert.NotNil(t, n)
	assert.Equal(t, "ops.bsky.social", n.toHandle)
	assert.NotNil(t, n.logger)
}

func TestLogNotifier_Send(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var n Notifier = NewLogNotifier(LogConfig{ToHandle: "ops.bsky.social", Logger: logger})

	err := n.Send(context.Background(), Notification{
		Subject: "cycle failed",
		Body:    "no unused quote",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "to=ops.bsky.social")
	assert.Contains(t, out, `subject="cycle failed"`)
	assert.Contains(t, out, `body="no unused quote"`)
}
