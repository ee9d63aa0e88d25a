package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// Fanout is the handler behind New: every record goes to the console
// output and, when configured, to the daily log file. It owns the files it
// writes to; closing the root Fanout closes them once. Handlers derived with
// WithAttrs or WithGroup write to the same files but do not own them.
type Fanout struct {
	outputs []slog.Handler
	files   []io.Closer
}

// AddOutput registers h. When file is non-nil it is closed by Close.
func (f *Fanout) AddOutput(h slog.Handler, file io.Closer) {
	f.outputs = append(f.outputs, h)
	if file != nil {
		f.files = append(f.files, file)
	}
}

// Enabled reports whether any output accepts the level.
func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.outputs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes r to every output that accepts its level. A failing output
// does not stop the others.
func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.outputs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *Fanout) derive(fn func(slog.Handler) slog.Handler) *Fanout {
	outputs := make([]slog.Handler, len(f.outputs))
	for i, h := range f.outputs {
		outputs[i] = fn(h)
	}
	return &Fanout{outputs: outputs}
}

// Close closes the log files owned by f.
func (f *Fanout) Close() error {
	var errs []error
	for _, file := range f.files {
		errs = append(errs, file.Close())
	}
	f.files = nil
	return errors.Join(errs...)
}
