package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watcher maps layout file changes to page reloads.
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   zerolog.Logger
	reload   func(page string)

	mu     sync.Mutex
	timers map[string]*time.Timer
	once   sync.Once
}

func newWatcher(dir string, debounce time.Duration, logger zerolog.Logger, reload func(string)) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("server: watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("server: watch %s: %w", dir, err)
	}
	logger.Info().Str("dir", dir).Msg("watching layouts")
	return &watcher{
		fs:       fsw,
		debounce: debounce,
		logger:   logger,
		reload:   reload,
		timers:   make(map[string]*time.Timer),
	}, nil
}

func (w *watcher) run(ctx context.Context) {
	defer w.close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			page, ok := pageFromPath(event.Name)
			if !ok {
				continue
			}
			w.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("layout file changed")
			w.schedule(page)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

// schedule debounces reloads per page.
func (w *watcher) schedule(page string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[page]; ok {
		timer.Stop()
	}
	w.timers[page] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, page)
		w.mu.Unlock()
		w.reload(page)
	})
}

func (w *watcher) close() {
	w.once.Do(func() {
		w.mu.Lock()
		for page, timer := range w.timers {
			timer.Stop()
			delete(w.timers, page)
		}
		w.mu.Unlock()
		_ = w.fs.Close()
	})
}

// pageFromPath returns the page a layout file serves: its base name without
// a .json, .yaml or .yml extension.
func pageFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return "", false
	}
	page := strings.TrimSuffix(base, filepath.Ext(base))
	if page == "" {
		return "", false
	}
	return page, true
}
