package widgets

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// UnsupportedType is the reserved tag of the fallback renderer.
const UnsupportedType = "unsupported"

// Registry maps widget type tags to renderers. Lookups are exact and case
// sensitive. Registering a type twice replaces the previous renderer. The
// reserved unsupported renderer is always resolvable through Lookup.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
		fallback:  unsupportedRenderer{},
	}
}

// Register associates renderer with widgetType. Existing entries are replaced.
func (r *Registry) Register(widgetType string, renderer Renderer) error {
	if widgetType == "" || strings.TrimSpace(widgetType) != widgetType {
		return fmt.Errorf("widgets: invalid widget type %q", widgetType)
	}
	if widgetType == UnsupportedType {
		return fmt.Errorf("widgets: %q is reserved", UnsupportedType)
	}
	if renderer == nil {
		return fmt.Errorf("widgets: renderer for %q is nil", widgetType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.renderers[widgetType] = renderer
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying default
// registry setup.
func (r *Registry) MustRegister(widgetType string, renderer Renderer) {
	if err := r.Register(widgetType, renderer); err != nil {
		panic(err)
	}
}

// Resolve returns the renderer registered for widgetType. The boolean is false
// when the type is unknown.
func (r *Registry) Resolve(widgetType string) (Renderer, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[widgetType]
	return renderer, ok
}

// Lookup returns the registered renderer or the unsupported fallback.
func (r *Registry) Lookup(widgetType string) Renderer {
	if renderer, ok := r.Resolve(widgetType); ok {
		return renderer
	}
	return r.Unsupported()
}

// Unsupported returns the reserved fallback renderer.
func (r *Registry) Unsupported() Renderer {
	if r == nil || r.fallback == nil {
		return unsupportedRenderer{}
	}
	return r.fallback
}

// Has reports whether a renderer is registered for widgetType.
func (r *Registry) Has(widgetType string) bool {
	_, ok := r.Resolve(widgetType)
	return ok
}

// Names returns the registered widget types, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns a copy of the registry so callers can register overrides
// without affecting the original.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := NewRegistry()
	for name, renderer := range r.renderers {
		cloned.renderers[name] = renderer
	}
	return cloned
}

type unsupportedRenderer struct{}

func (unsupportedRenderer) Render(context.Context, Context) (Output, error) {
	return Output{}, nil
}
