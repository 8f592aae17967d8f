package config

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/erc7824/tracelog/pkg/log"
	"github.com/erc7824/tracelog/pkg/spanlog"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before reloading.
const DefaultDebounce = 200 * time.Millisecond

var _ spanlog.OptionsMonitor = &Watcher{}

// Watcher is a spanlog.OptionsMonitor backed by a configuration file. It
// reloads the file whenever it changes. A file that fails to load or
// validate leaves the current snapshot in place. Variables taken from the
// .env file keep the value they had when first loaded.
type Watcher struct {
	path      string
	lg        log.Logger
	configure []func(*spanlog.Options)
	debounce  time.Duration

	reloader *spanlog.Reloader
	minLevel atomic.Int32

	reloadMu sync.Mutex // serializes Reload

	mu   sync.Mutex
	file FileConfig

	fsw       *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithLogger sets the logger used for reload diagnostics.
func WithLogger(lg log.Logger) WatchOption {
	return func(w *Watcher) {
		w.lg = log.OrNoop(lg)
	}
}

// WithConfigure adds a hook applied to every snapshot after the file
// settings. Use it to set fields that cannot come from a file, such as
// the span resolver.
func WithConfigure(fn func(*spanlog.Options)) WatchOption {
	return func(w *Watcher) {
		if fn != nil {
			w.configure = append(w.configure, fn)
		}
	}
}

// WithDebounce sets the delay between the last file event and the reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watch loads path and starts watching its directory.
func Watch(path string, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch config: empty path")
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		lg:       log.NewNoopLogger(),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.lg = w.lg.WithName("config")

	cfg, err := Load(w.path)
	if err != nil {
		return nil, err
	}
	options, err := w.apply(cfg)
	if err != nil {
		return nil, err
	}
	w.reloader = spanlog.NewReloader(options)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(w.path))
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.watchLoop()

	w.lg.Info("watching config", "path", w.path)
	return w, nil
}

// Current implements spanlog.OptionsMonitor.
func (w *Watcher) Current() spanlog.Options {
	return w.reloader.Current()
}

// OnChange implements spanlog.OptionsMonitor.
func (w *Watcher) OnChange(listener func(spanlog.Options)) func() {
	return w.reloader.OnChange(listener)
}

// Config returns the last successfully loaded file configuration.
func (w *Watcher) Config() FileConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file
}

// Filter returns a spanlog.Filter applying the min_level setting of the
// latest loaded file.
func (w *Watcher) Filter() spanlog.Filter {
	return func(_ string, level spanlog.Level) bool {
		return level >= spanlog.Level(w.minLevel.Load())
	}
}

// Reload loads the file now and publishes the result. On failure the
// current snapshot is kept and the error is returned.
func (w *Watcher) Reload() error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	cfg, err := Load(w.path)
	if err != nil {
		w.lg.Warn("config reload failed, keeping current options", "path", w.path, "error", err)
		return err
	}
	options, err := w.apply(cfg)
	if err != nil {
		w.lg.Warn("config reload failed, keeping current options", "path", w.path, "error", err)
		return err
	}

	w.reloader.Reload(options)
	w.lg.Info("config reloaded",
		"path", w.path,
		"includeLoggerName", cfg.IncludeLoggerName,
		"includeKeyValuePairs", cfg.IncludeKeyValuePairs,
		"minLevel", cfg.MinLevel)
	return nil
}

// Close stops watching. Snapshots already published stay valid.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) apply(cfg FileConfig) (spanlog.Options, error) {
	level, err := cfg.Level()
	if err != nil {
		return spanlog.Options{}, err
	}

	options := cfg.Options()
	for _, fn := range w.configure {
		fn(&options)
	}

	w.mu.Lock()
	w.file = cfg
	w.mu.Unlock()
	w.minLevel.Store(int32(level))

	return options, nil
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
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
			_ = w.Reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.lg.Error("config watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
