package widgets

import (
	"context"

	"github.com/goliatone/go-sdui/pkg/fetch"
	"github.com/goliatone/go-sdui/pkg/layout"
)

// Renderer turns one widget descriptor into a renderable Output. Renderers
// decode and validate the descriptor payload themselves. Errors and panics are
// contained by the page renderer, so implementations can fail freely.
type Renderer interface {
	Render(ctx context.Context, widget Context) (Output, error)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx context.Context, widget Context) (Output, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, widget Context) (Output, error) {
	return f(ctx, widget)
}

// Context carries the per-widget inputs handed to a Renderer.
type Context struct {
	Key        string
	Index      int
	Descriptor layout.WidgetDescriptor

	// Update publishes a replacement Output once a secondary fetch owned by
	// the renderer settles. It is never nil and may be called from any
	// goroutine; calls after the page is discarded are ignored.
	Update func(Output)
}

// Output is the materialised form of a widget. HTML holds the markup fragment
// and Props the structured values host screens may use instead of markup.
type Output struct {
	HTML   string         `json:"html,omitempty"`
	Props  map[string]any `json:"props,omitempty"`
	Height float64        `json:"height,omitempty"`

	// Fetch reports the state of a secondary data fetch owned by the widget.
	// It is empty for widgets without one.
	Fetch fetch.State `json:"fetch,omitempty"`
}

// Empty reports whether the output renders nothing.
func (o Output) Empty() bool {
	return o.HTML == "" && len(o.Props) == 0 && o.Height == 0
}
