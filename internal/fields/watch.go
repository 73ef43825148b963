package fields

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ironsheep/ocr-fields/internal/logger"
)

// DefaultDebounce is how long a fields file must stay quiet after a change
// before it is reloaded.
const DefaultDebounce = 300 * time.Millisecond

// Watch reloads the fields file at path whenever it changes and calls fn with
// the result. Editors that save by renaming a new file into place are handled
// by watching the parent directory. fn runs on the watcher goroutine; Watch
// blocks until ctx is done and returns nil, or returns an error if the watch
// cannot be established.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(*FieldSet, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	log := logger.WithComponent("fields")
	log.Debug().Str("path", abs).Msg("watching fields file")

	var pending time.Time
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.Now()
			}

		case now := <-ticker.C:
			if pending.IsZero() || now.Sub(pending) < debounce {
				continue
			}
			pending = time.Time{}
			set, err := Load(abs)
			if err != nil {
				log.Warn().Err(err).Msg("fields file reload failed")
			} else {
				log.Info().Str("path", abs).Int("fields", len(set.Fields)).Msg("fields file reloaded")
			}
			fn(set, err)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}
