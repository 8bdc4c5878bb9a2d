package resolver

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/telemetry"
)

// DefaultTimeout bounds a layout fetch when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Option customises the resolver configuration.
type Option func(*Resolver)

// WithTimeout bounds each fetch. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithDefaultLayout replaces the layout substituted when a fetch fails.
func WithDefaultLayout(page *layout.PageLayout) Option {
	return func(r *Resolver) {
		if page != nil {
			r.fallback = page.Clone()
		}
	}
}

// WithDiagnosticSink registers a callback receiving every diagnostic.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(r *Resolver) {
		r.sink = sink
	}
}

// WithLogger injects a zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(recorder telemetry.Recorder) Option {
	return func(r *Resolver) {
		if recorder != nil {
			r.recorder = recorder
		}
	}
}

// DefaultLayout returns the built-in fallback: an empty banner carousel
// followed by an empty category grid.
func DefaultLayout() *layout.PageLayout {
	return &layout.PageLayout{
		PageType: "fallback",
		Widgets: []layout.WidgetDescriptor{
			{ID: "fallback-banners", Type: layout.TypeBannerCarousel, Data: json.RawMessage(`{"banners":[]}`)},
			{ID: "fallback-categories", Type: layout.TypeCategoryGrid, Data: json.RawMessage(`{}`)},
		},
	}
}
