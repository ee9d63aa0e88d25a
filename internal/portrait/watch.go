package portrait

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Result reports one photo handled by Watch.
type Result struct {
	Source string
	Output string
	Err    error
}

// Watch prepares photos as they are created or rewritten in SourceDir. The
// returned channel is closed when ctx is done or the watcher fails.
func (p *Preprocessor) Watch(ctx context.Context, authors []string) (<-chan Result, error) {
	logger := logging.OrNop(p.Logger)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(p.SourceDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", p.SourceDir, err)
	}

	results := make(chan Result, 16)

	go func() {
		defer close(results)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				name := filepath.Base(event.Name)
				if !hasExtension(name, sourceExtensions) {
					continue
				}
				author, ok := MatchAuthor(name, authors)
				if !ok {
					logger.Debug("ignoring photo with unknown author", "file", name)
					continue
				}

				out, err := p.ProcessFile(event.Name, author)
				select {
				case results <- Result{Source: event.Name, Output: out, Err: err}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	}()

	logger.Info("watching source photos", "dir", p.SourceDir, "authors", len(authors))
	return results, nil
}
