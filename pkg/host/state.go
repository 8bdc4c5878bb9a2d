package host

import (
	"github.com/goliatone/go-sdui/pkg/render"
	"github.com/goliatone/go-sdui/pkg/resolver"
)

// Phase is the host visible state of a screen.
type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhaseDegraded Phase = "degraded"
)

// State is an immutable snapshot published to subscribers. Degraded states
// still carry the fallback units so hosts can show content underneath a retry
// affordance.
type State struct {
	Phase       Phase
	Units       []render.RenderedUnit
	PassID      string
	Generation  uint64
	PageType    string
	Cause       error
	Diagnostics []resolver.Diagnostic
}

// IsLoading reports whether the screen is still waiting for its first layout.
func (s State) IsLoading() bool {
	return s.Phase == PhaseLoading
}

func (s State) clone() State {
	out := s
	if s.Units != nil {
		out.Units = append([]render.RenderedUnit(nil), s.Units...)
	}
	if s.Diagnostics != nil {
		out.Diagnostics = append([]resolver.Diagnostic(nil), s.Diagnostics...)
	}
	return out
}
