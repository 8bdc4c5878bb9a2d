package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives engine events. Metrics implements it; NopRecorder drops
// everything.
type Recorder interface {
	LayoutResolved(pageType, outcome string)
	DescriptorsDropped(pageType string, count int)
	WidgetRendered(widgetType, state string)
	RenderDuration(pageType string, elapsed time.Duration)
	StaleResponseDiscarded(pageType string)
}

// NopRecorder ignores all events.
type NopRecorder struct{}

func (NopRecorder) LayoutResolved(string, string) {}
func (NopRecorder) DescriptorsDropped(string, int) {}
func (NopRecorder) WidgetRendered(string, string) {}
func (NopRecorder) RenderDuration(string, time.Duration) {}
func (NopRecorder) StaleResponseDiscarded(string) {}

// Metrics records engine events as Prometheus series on a private registry.
type Metrics struct {
	layouts  *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	units    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stale    *prometheus.CounterVec
	registry *prometheus.Registry
}

var _ Recorder = (*Metrics)(nil)

// NewMetrics builds the collectors. A disabled config yields a Metrics value
// whose methods are no-ops.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{}, nil
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "sdui"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_resolved_total",
			Help:      "Layouts resolved, by page type and outcome (ok, degraded)",
		}, []string{"page_type", "outcome"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptors_dropped_total",
			Help:      "Widget descriptors dropped during validation",
		}, []string{"page_type"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "widget_units_total",
			Help:      "Rendered widget units by widget type and state",
		}, []string{"widget_type", "state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of a page render pass",
			Buckets:   prometheus.DefBuckets,
		}, []string{"page_type"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_layouts_discarded_total",
			Help:      "Layout responses discarded because a newer request superseded them",
		}, []string{"page_type"}),
	}

	for _, collector := range []prometheus.Collector{m.layouts, m.dropped, m.units, m.duration, m.stale} {
		if err := m.registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Enabled reports whether collectors are registered.
func (m *Metrics) Enabled() bool {
	return m != nil && m.registry != nil
}

// Handler serves the private registry. Disabled metrics answer 404.
func (m *Metrics) Handler() http.Handler {
	if !m.Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests and custom exporters.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if !m.Enabled() {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) LayoutResolved(pageType, outcome string) {
	if !m.Enabled() {
		return
	}
	m.layouts.WithLabelValues(pageType, outcome).Inc()
}

func (m *Metrics) DescriptorsDropped(pageType string, count int) {
	if !m.Enabled() || count <= 0 {
		return
	}
	m.dropped.WithLabelValues(pageType).Add(float64(count))
}

func (m *Metrics) WidgetRendered(widgetType, state string) {
	if !m.Enabled() {
		return
	}
	m.units.WithLabelValues(widgetType, state).Inc()
}

func (m *Metrics) RenderDuration(pageType string, elapsed time.Duration) {
	if !m.Enabled() {
		return
	}
	m.duration.WithLabelValues(pageType).Observe(elapsed.Seconds())
}

func (m *Metrics) StaleResponseDiscarded(pageType string) {
	if !m.Enabled() {
		return
	}
	m.stale.WithLabelValues(pageType).Inc()
}
