package render

import "github.com/goliatone/go-sdui/pkg/widgets"

// State is the terminal state of a widget in a render pass.
type State string

const (
	// StateResolved marks a widget rendered by its registered renderer.
	StateResolved State = "resolved"
	// StateUnsupported marks a widget type with no registered renderer.
	StateUnsupported State = "unsupported"
	// StateFailed marks a widget whose renderer failed; it renders exactly
	// like an unsupported widget.
	StateFailed State = "failed"
)

// RenderedUnit is the materialised form of one plan entry.
type RenderedUnit struct {
	Key    string         `json:"key"`
	Index  int            `json:"index"`
	Type   string         `json:"type"`
	State  State          `json:"state"`
	Output widgets.Output `json:"output"`
	Err    error          `json:"-"`
}

// Visible reports whether the unit shows anything.
func (u RenderedUnit) Visible() bool {
	return u.State == StateResolved && !u.Output.Empty()
}

// Pass is the result of one render pass.
type Pass struct {
	ID    string
	Units []RenderedUnit
}

// UnitUpdate carries a replacement unit published after a secondary fetch
// settled.
type UnitUpdate struct {
	PassID string
	Unit   RenderedUnit
}

// UpdateFunc receives unit updates. It may be called from any goroutine.
type UpdateFunc func(UnitUpdate)
