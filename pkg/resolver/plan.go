package resolver

import (
	"time"

	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

// PlanEntry pairs a validated descriptor with the renderer resolved for it.
// Unsupported entries carry the registry's fallback renderer.
type PlanEntry struct {
	Key         string
	SourceIndex int
	Descriptor  layout.WidgetDescriptor
	Renderer    widgets.Renderer
	Supported   bool
}

// RenderPlan is the normalised form of a page layout, rebuilt on every
// resolve. Entries keep the layout order.
type RenderPlan struct {
	PageType        string
	Version         int
	RefreshInterval time.Duration
	Entries         []PlanEntry
	Fallback        bool
}

// Len returns the number of entries.
func (p RenderPlan) Len() int {
	return len(p.Entries)
}

// Types lists the widget types in plan order.
func (p RenderPlan) Types() []string {
	out := make([]string, len(p.Entries))
	for idx, entry := range p.Entries {
		out[idx] = entry.Descriptor.Type
	}
	return out
}

// Result is the outcome of a resolve call. Degraded plans come from the
// default layout; Cause explains why.
type Result struct {
	Plan        RenderPlan
	Degraded    bool
	Cause       error
	Diagnostics []Diagnostic
}

// Dropped counts the descriptors removed during validation.
func (r Result) Dropped() int {
	count := 0
	for _, diag := range r.Diagnostics {
		if diag.Kind == KindWidgetDescriptorInvalid {
			count++
		}
	}
	return count
}
