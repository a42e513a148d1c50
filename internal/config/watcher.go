package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangeFunc is called after the watched file reloads successfully.
type ChangeFunc func(old, new *Config)

// Watcher reloads a configuration file whenever it is written or recreated.
type Watcher struct {
	path     string
	loader   *Loader
	log      *zap.Logger
	debounce time.Duration

	mu      sync.RWMutex
	current *Config

	cbMu      sync.Mutex
	callbacks []ChangeFunc

	fs   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher loads path once and prepares to watch it.
func NewWatcher(path string, loader *Loader, log *zap.Logger) (*Watcher, error) {
	if _, err := formatOf(path); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file system watcher: %w", err)
	}
	return &Watcher{
		path:     filepath.Clean(path),
		loader:   loader,
		log:      log,
		debounce: 200 * time.Millisecond,
		current:  cfg,
		fs:       fs,
		done:     make(chan struct{}),
	}, nil
}

// SetDebounce sets how long the watcher waits for writes to settle before reloading.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Current returns the last configuration that loaded successfully.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers fn to run after each successful reload.
func (w *Watcher) OnChange(fn ChangeFunc) {
	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start watches the file's directory so editors that replace the file are handled.
func (w *Watcher) Start() error {
	if err := w.fs.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop ends the watch loop and releases the file system watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

// Reload loads the file now.
func (w *Watcher) Reload() error {
	cfg, err := w.loader.Load(w.path)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	w.mu.Lock()
	old := w.current
	w.current = cfg
	w.mu.Unlock()

	w.cbMu.Lock()
	callbacks := append([]ChangeFunc(nil), w.callbacks...)
	w.cbMu.Unlock()
	for _, fn := range callbacks {
		fn(old, cfg)
	}
	w.log.Info("configuration reloaded", zap.String("path", w.path))
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				w.log.Warn("config reload failed", zap.Error(err))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}
