package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/crimson-sun/spfeed/internal/source"
)

func init() {
	source.Register("file", func() source.Source {
		return &Source{}
	})
}

// Source reads a payload from a file on disk and watches it for changes.
type Source struct{}

func (s *Source) Read(ctx context.Context, cfg source.Config) ([]byte, error) {
	if cfg.Path == "" {
		return nil, errors.New("file source: missing path")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("file source: %w", err)
	}
	return data, nil
}

// Watch emits the file contents once and again after every write or
// (re)creation. The parent directory is watched so that editors which save
// by renaming a temp file over the target are still seen.
func (s *Source) Watch(ctx context.Context, cfg source.Config) (<-chan []byte, error) {
	if cfg.Path == "" {
		return nil, errors.New("file source: missing path")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("file source: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("file source: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("file source: watch %s: %w", filepath.Dir(path), err)
	}

	log := zap.L().With(zap.String("source", "file"), zap.String("path", path))
	ch := make(chan []byte, 1)
	go func() {
		defer close(ch)
		defer w.Close()

		emit := func() bool {
			data, err := os.ReadFile(path)
			if err != nil {
				// The file may be mid-replace; the next event retries.
				log.Warn("read failed", zap.Error(err))
				return true
			}
			select {
			case ch <- data:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !emit() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return ch, nil
}
