package spanlog

import (
	"sort"
	"sync"
)

// Options controls how records are translated into span events.
// A snapshot is never modified after it has been handed to a Provider;
// reloads replace it as a whole.
type Options struct {
	// IncludeLoggerName adds a "logger" field with the logger's name to
	// every message event.
	IncludeLoggerName bool
	// IncludeKeyValuePairs adds one "log."-prefixed field per entry of
	// structured state to every message event.
	IncludeKeyValuePairs bool
	// SpanResolver finds the span records are written to. Without one
	// nothing is ever emitted.
	SpanResolver SpanResolver
}

// OptionsMonitor supplies Options and notifies about replacements.
type OptionsMonitor interface {
	// Current returns the latest snapshot.
	Current() Options
	// OnChange registers a one-shot listener, invoked at most once with the
	// next snapshot. The returned function cancels the registration.
	OnChange(listener func(Options)) (cancel func())
}

// StaticOptions returns an OptionsMonitor that always reports o and never
// changes.
func StaticOptions(o Options) OptionsMonitor {
	return staticOptions{options: o}
}

type staticOptions struct {
	options Options
}

func (s staticOptions) Current() Options { return s.options }

func (s staticOptions) OnChange(func(Options)) func() { return func() {} }

var _ OptionsMonitor = &Reloader{}

// Reloader is an in-memory OptionsMonitor. Reload publishes a new snapshot
// to every registered listener.
type Reloader struct {
	mu        sync.Mutex
	current   Options
	nextID    uint64
	listeners map[uint64]func(Options)
}

// NewReloader returns a Reloader starting at initial.
func NewReloader(initial Options) *Reloader {
	return &Reloader{
		current:   initial,
		listeners: make(map[uint64]func(Options)),
	}
}

// Current returns the latest snapshot.
func (r *Reloader) Current() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange registers a one-shot listener.
func (r *Reloader) OnChange(listener func(Options)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = listener

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Reload stores o as the current snapshot and notifies the listeners
// registered so far, in registration order. Listeners run on the calling
// goroutine without the lock held, so they may register again.
func (r *Reloader) Reload(o Options) {
	r.mu.Lock()
	r.current = o
	pending := r.listeners
	r.listeners = make(map[uint64]func(Options))
	r.mu.Unlock()

	ids := make([]uint64, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		pending[id](o)
	}
}

// Listeners returns the number of registered listeners.
func (r *Reloader) Listeners() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
