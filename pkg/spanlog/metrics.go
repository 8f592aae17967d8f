package spanlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	eventKindMessage = "message"
	eventKindError   = "error"

	skipReasonDisabled     = "disabled"
	skipReasonEmptyMessage = "empty_message"
)

// Metrics contains the Prometheus metrics of a Provider and its Loggers.
// A nil *Metrics records nothing.
type Metrics struct {
	SpanEvents     *prometheus.CounterVec
	RecordsSkipped *prometheus.CounterVec
	OptionsReloads prometheus.Counter
	Loggers        prometheus.Gauge
}

// NewMetrics initializes and registers metrics with the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry initializes and registers metrics with a custom registry.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		SpanEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracelog_span_events_total",
			Help: "The total number of events written to spans",
		}, []string{"kind"}),
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracelog_records_skipped_total",
			Help: "The total number of log records that produced no message event",
		}, []string{"reason"}),
		OptionsReloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracelog_options_reloads_total",
			Help: "The total number of options snapshots propagated to loggers",
		}),
		Loggers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tracelog_loggers",
			Help: "The current number of cached loggers",
		}),
	}
}

func (m *Metrics) recordEvent(kind string) {
	if m == nil {
		return
	}
	m.SpanEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) recordSkipped(reason string) {
	if m == nil {
		return
	}
	m.RecordsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) recordReload() {
	if m == nil {
		return
	}
	m.OptionsReloads.Inc()
}

func (m *Metrics) recordLoggerCreated() {
	if m == nil {
		return
	}
	m.Loggers.Inc()
}
