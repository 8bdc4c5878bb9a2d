package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WidgetDescriptor is one typed unit of a page layout. Data is kept as raw JSON
// and decoded lazily by the renderer registered for Type.
type WidgetDescriptor struct {
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type" validate:"required"`
	Data     json.RawMessage   `json:"data" validate:"required"`
	Priority *int              `json:"priority,omitempty"`
	Height   *float64          `json:"height,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
}

// HasData reports whether the descriptor carries a payload. A JSON null counts
// as missing; an empty object does not.
func (w WidgetDescriptor) HasData() bool {
	trimmed := bytes.TrimSpace(w.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Key returns the stable identifier used for keying the rendered unit. The
// position is used when the descriptor has no id.
func (w WidgetDescriptor) Key(index int) string {
	if id := strings.TrimSpace(w.ID); id != "" {
		return id
	}
	return fmt.Sprintf("widget-%d", index)
}

// DecodeData unmarshals the payload into dst. Missing payloads decode as an
// empty object so renderers can rely on zero values.
func (w WidgetDescriptor) DecodeData(dst any) error {
	if !w.HasData() {
		return json.Unmarshal([]byte("{}"), dst)
	}
	return json.Unmarshal(w.Data, dst)
}

// Clone returns a deep copy of the descriptor.
func (w WidgetDescriptor) Clone() WidgetDescriptor {
	out := w
	if w.Data != nil {
		out.Data = append(json.RawMessage(nil), w.Data...)
	}
	if w.Priority != nil {
		priority := *w.Priority
		out.Priority = &priority
	}
	if w.Height != nil {
		height := *w.Height
		out.Height = &height
	}
	if len(w.Style) > 0 {
		out.Style = make(map[string]string, len(w.Style))
		for key, value := range w.Style {
			out.Style[key] = value
		}
	}
	return out
}

// PageLayout is the ordered widget sequence supplied by a layout provider. The
// order of Widgets is the render order. A nil Widgets slice means the payload
// did not carry a widgets sequence at all, which is structurally invalid; an
// empty non-nil slice is a valid, empty layout.
type PageLayout struct {
	Widgets         []WidgetDescriptor `json:"widgets"`
	PageType        string             `json:"pageType,omitempty"`
	Version         int                `json:"version,omitempty"`
	RefreshInterval time.Duration      `json:"-"`
}

// HasWidgets reports whether the layout carries a widgets sequence.
func (p *PageLayout) HasWidgets() bool {
	return p != nil && p.Widgets != nil
}

// Clone returns a deep copy of the layout.
func (p *PageLayout) Clone() *PageLayout {
	if p == nil {
		return nil
	}
	out := *p
	if p.Widgets != nil {
		out.Widgets = make([]WidgetDescriptor, len(p.Widgets))
		for idx, widget := range p.Widgets {
			out.Widgets[idx] = widget.Clone()
		}
	}
	return &out
}

type wireLayout struct {
	Widgets         *[]WidgetDescriptor `json:"widgets"`
	PageType        string              `json:"pageType,omitempty"`
	Version         int                 `json:"version,omitempty"`
	RefreshInterval float64             `json:"refreshInterval,omitempty"`
}

// UnmarshalJSON keeps the difference between a missing widgets key and an
// empty widgets list.
func (p *PageLayout) UnmarshalJSON(data []byte) error {
	var wire wireLayout
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.PageType = wire.PageType
	p.Version = wire.Version
	p.RefreshInterval = secondsToDuration(wire.RefreshInterval)
	p.Widgets = nil
	if wire.Widgets != nil {
		p.Widgets = append([]WidgetDescriptor{}, (*wire.Widgets)...)
	}
	return nil
}

// MarshalJSON writes the refresh interval in seconds.
func (p PageLayout) MarshalJSON() ([]byte, error) {
	widgets := p.Widgets
	wire := wireLayout{
		PageType:        p.PageType,
		Version:         p.Version,
		RefreshInterval: p.RefreshInterval.Seconds(),
	}
	if widgets != nil {
		wire.Widgets = &widgets
	}
	return json.Marshal(wire)
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
