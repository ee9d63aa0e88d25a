package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCloser struct {
	calls int
	err   error
}

func (c *countingCloser) Close() error {
	c.calls++
	return c.err
}

func TestFanout(t *testing.T) {
	t.Run("routes by level", func(t *testing.T) {
		var console, file bytes.Buffer
		f := &Fanout{}
		f.AddOutput(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}), nil)
		f.AddOutput(slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}), nil)

		logger := slog.New(f)
		logger.Info("portrait prepared")
		logger.Warn("no portrait for author")

		assert.NotContains(t, console.String(), "portrait prepared")
		assert.Contains(t, console.String(), "no portrait for author")
		assert.Contains(t, file.String(), "portrait prepared")
		assert.True(t, f.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("derived handlers share outputs", func(t *testing.T) {
		var buf bytes.Buffer
		f := &Fanout{}
		f.AddOutput(slog.NewTextHandler(&buf, nil), nil)

		slog.New(f).With("quote_id", 7).WithGroup("card").Info("saved", "path", "20240309.jpeg")
		assert.Contains(t, buf.String(), "quote_id=7")
		assert.Contains(t, buf.String(), "card.path=20240309.jpeg")
	})

	t.Run("closes owned files once", func(t *testing.T) {
		file := &countingCloser{}
		f := &Fanout{}
		f.AddOutput(slog.NewTextHandler(&bytes.Buffer{}, nil), file)

		derived := f.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*Fanout)
		require.NoError(t, derived.Close())
		assert.Zero(t, file.calls)

		require.NoError(t, f.Close())
		require.NoError(t, f.Close())
		assert.Equal(t, 1, file.calls)
	})

	t.Run("close joins errors", func(t *testing.T) {
		boom := errors.New("disk full")
		f := &Fanout{}
		f.AddOutput(slog.NewTextHandler(&bytes.Buffer{}, nil), &countingCloser{err: boom})
		assert.ErrorIs(t, f.Close(), boom)
	})
}
