package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file every time it is written and publishes the
// result. Only the latest valid config is kept; invalid edits are logged
// and skipped.
type Watcher struct {
	path    string
	load    func() (*Config, error)
	watch   *fsnotify.Watcher
	updates chan *Config
	done    chan struct{}
	log     *slog.Logger
}

// Watch starts watching path. load builds the full config after a change,
// so callers can re-apply presets and flags around the file.
func Watch(path string, load func() (*Config, error), log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		load:    load,
		watch:   fw,
		updates: make(chan *Config, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	go w.loop()
	return w, nil
}

// Updates delivers reloaded configs.
func (w *Watcher) Updates() <-chan *Config { return w.updates }

func (w *Watcher) Close() error {
	err := w.watch.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watch.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watch.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch", "err", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.load()
	if err != nil {
		w.log.Warn("config reload skipped", "path", w.path, "err", err)
		return
	}
	// Replace a pending update that nobody consumed yet.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
	w.log.Info("config reloaded", "path", w.path)
}
