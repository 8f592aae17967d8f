package spanlog

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/erc7824/tracelog/pkg/log"
)

// Provider creates and caches one Logger per name and keeps every cached
// Logger on the latest Options snapshot supplied by its OptionsMonitor.
type Provider struct {
	filter  Filter
	monitor OptionsMonitor
	lg      log.Logger
	metrics *Metrics

	loggers sync.Map // string -> *Logger
	current atomic.Pointer[Options]

	mu     sync.Mutex // serializes reloads and guards cancel and closed
	cancel func()
	closed bool
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithFilter sets the filter passed to every Logger. Defaults to AcceptAll.
func WithFilter(filter Filter) ProviderOption {
	return func(p *Provider) {
		if filter != nil {
			p.filter = filter
		}
	}
}

// WithMinLevel is WithFilter(MinLevel(level)).
func WithMinLevel(level Level) ProviderOption {
	return WithFilter(MinLevel(level))
}

// WithLogger sets the logger used for the provider's own diagnostics.
func WithLogger(lg log.Logger) ProviderOption {
	return func(p *Provider) {
		p.lg = log.OrNoop(lg)
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) ProviderOption {
	return func(p *Provider) {
		p.metrics = m
	}
}

// NewProvider returns a Provider that takes its initial Options from
// monitor and follows its changes until Close. A nil monitor behaves like
// StaticOptions(Options{}), which never emits.
func NewProvider(monitor OptionsMonitor, opts ...ProviderOption) *Provider {
	if monitor == nil {
		monitor = StaticOptions(Options{})
	}

	p := &Provider{
		filter:  AcceptAll,
		monitor: monitor,
		lg:      log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lg = p.lg.WithName("spanlog")

	// Subscribe before reading the initial snapshot so a change published in
	// between is delivered to reload. Current is called without p.mu held
	// since a monitor may notify synchronously.
	p.mu.Lock()
	p.cancel = monitor.OnChange(p.reload)
	p.mu.Unlock()

	initial := monitor.Current()

	p.mu.Lock()
	if p.current.Load() == nil {
		p.current.Store(&initial)
	}
	p.mu.Unlock()

	return p
}

// NewStaticProvider returns a Provider whose Options never change.
func NewStaticProvider(options Options, opts ...ProviderOption) *Provider {
	return NewProvider(StaticOptions(options), opts...)
}

// CreateLogger returns the Logger for name, creating it on first use.
// Concurrent calls for the same name return the same instance.
func (p *Provider) CreateLogger(name string) (*Logger, error) {
	if name == "" {
		return nil, errors.Wrap(ErrEmptyName, "create logger")
	}

	if lg, ok := p.loggers.Load(name); ok {
		return lg.(*Logger), nil
	}

	options := p.current.Load()
	actual, loaded := p.loggers.LoadOrStore(name, newLogger(name, p.filter, options, p.metrics))
	lg := actual.(*Logger)
	if loaded {
		return lg, nil
	}

	p.metrics.recordLoggerCreated()

	// A reload may have published a new snapshot after options was read
	// but before the logger became visible to its iteration.
	if latest := p.current.Load(); latest != options {
		lg.options.CompareAndSwap(options, latest)
	}

	return lg, nil
}

// Options returns the current snapshot.
func (p *Provider) Options() Options {
	return *p.current.Load()
}

// Close stops following configuration changes. Loggers keep their last
// snapshot. Close is idempotent.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	return nil
}

func (p *Provider) reload(options Options) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	snapshot := &options
	p.current.Store(snapshot)

	count := 0
	p.loggers.Range(func(_, value any) bool {
		value.(*Logger).options.Store(snapshot)
		count++
		return true
	})

	p.cancel = p.monitor.OnChange(p.reload)

	p.metrics.recordReload()
	p.lg.Debug("options reloaded",
		"loggers", count,
		"includeLoggerName", options.IncludeLoggerName,
		"includeKeyValuePairs", options.IncludeKeyValuePairs)
}
