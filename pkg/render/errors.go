package render

import "errors"

// ErrWidgetRenderFailed wraps errors and panics raised by widget renderers.
var ErrWidgetRenderFailed = errors.New("render: widget render failed")
