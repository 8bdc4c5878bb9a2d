package resolver

import "fmt"

// DiagnosticKind classifies a diagnostic.
type DiagnosticKind string

const (
	KindLayoutFetchFailed       DiagnosticKind = "layout_fetch_failed"
	KindLayoutShapeInvalid      DiagnosticKind = "layout_shape_invalid"
	KindWidgetDescriptorInvalid DiagnosticKind = "widget_descriptor_invalid"
)

// Diagnostic describes a recovered problem found while resolving a layout.
// Index is the descriptor position in the fetched layout, or -1 for layout
// level diagnostics.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Index  int            `json:"index"`
	ID     string         `json:"id,omitempty"`
	Type   string         `json:"type,omitempty"`
	Reason string         `json:"reason"`
	Err    error          `json:"-"`
}

func (d Diagnostic) String() string {
	if d.Index < 0 {
		return fmt.Sprintf("%s: %s", d.Kind, d.Reason)
	}
	return fmt.Sprintf("%s: widget %d (type=%q id=%q): %s", d.Kind, d.Index, d.Type, d.ID, d.Reason)
}

// DiagnosticSink receives diagnostics as they are produced.
type DiagnosticSink func(Diagnostic)
