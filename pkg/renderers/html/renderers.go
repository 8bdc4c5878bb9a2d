package html

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sdui/pkg/catalog"
	"github.com/goliatone/go-sdui/pkg/layout"
	rendertemplate "github.com/goliatone/go-sdui/pkg/render/template"
	"github.com/goliatone/go-sdui/pkg/render/template/gotemplate"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

const widgetTemplatePrefix = "templates/widgets/"

// ErrCatalogUnavailable marks catalog widgets rendered without a provider.
var ErrCatalogUnavailable = errors.New("html: catalog provider not configured")

// Renderers holds the shared dependencies of the built-in widget renderers.
type Renderers struct {
	templates    rendertemplate.TemplateRenderer
	catalog      catalog.Provider
	now          func() time.Time
	fetchTimeout time.Duration
	logger       zerolog.Logger
	stylesheet   string
}

// New constructs the renderers applying options.
func New(options ...Option) (*Renderers, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		now:          time.Now,
		fetchTimeout: DefaultFetchTimeout,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	stylesheet := defaultStylesheet()
	if cfg.stylesheet != nil {
		stylesheet = *cfg.stylesheet
	}

	return &Renderers{
		templates:    templates,
		catalog:      cfg.catalog,
		now:          cfg.now,
		fetchTimeout: cfg.fetchTimeout,
		logger:       cfg.logger,
		stylesheet:   stylesheet,
	}, nil
}

// NewRegistry returns a registry with every built-in renderer registered.
func NewRegistry(options ...Option) (*widgets.Registry, error) {
	renderers, err := New(options...)
	if err != nil {
		return nil, err
	}
	registry := widgets.NewRegistry()
	if err := renderers.Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// Register adds the built-in renderers to registry, replacing existing ones.
func (r *Renderers) Register(registry *widgets.Registry) error {
	if registry == nil {
		return errors.New("html renderer: registry is nil")
	}
	for _, tag := range Types() {
		if err := registry.Register(tag, r.Renderer(tag)); err != nil {
			return fmt.Errorf("html renderer: register %s: %w", tag, err)
		}
	}
	return nil
}

// Types lists the widget types with a built-in renderer.
func Types() []string {
	types := []string{
		layout.TypeBannerCarousel,
		layout.TypeCategoryGrid,
		layout.TypeProductRail,
		layout.TypeProductGrid,
		layout.TypeSpacer,
		layout.TypeDivider,
		layout.TypeOfferBanner,
		layout.TypeCountdownTimer,
		layout.TypeCustom,
	}
	slices.Sort(types)
	return types
}

// Renderer returns the built-in renderer for tag, or nil.
func (r *Renderers) Renderer(tag string) widgets.Renderer {
	switch tag {
	case layout.TypeBannerCarousel:
		return widgets.RendererFunc(r.bannerCarousel)
	case layout.TypeCategoryGrid:
		return widgets.RendererFunc(r.categoryGrid)
	case layout.TypeProductRail:
		return widgets.RendererFunc(r.productList(productRailSchema, "product_rail"))
	case layout.TypeProductGrid:
		return widgets.RendererFunc(r.productList(productGridSchema, "product_grid"))
	case layout.TypeSpacer:
		return widgets.RendererFunc(r.spacer)
	case layout.TypeDivider:
		return widgets.RendererFunc(r.divider)
	case layout.TypeOfferBanner:
		return widgets.RendererFunc(r.offerBanner)
	case layout.TypeCountdownTimer:
		return widgets.RendererFunc(r.countdown)
	case layout.TypeCustom:
		return widgets.RendererFunc(r.custom)
	default:
		return nil
	}
}

// Templates exposes the template engine so hosts can register filters.
func (r *Renderers) Templates() rendertemplate.TemplateRenderer {
	return r.templates
}

func (r *Renderers) render(ctx context.Context, name string, widget widgets.Context, data any, extra map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	view := map[string]any{
		"key":   widget.Key,
		"index": widget.Index,
		"type":  widget.Descriptor.Type,
		"data":  data,
		"style": inlineStyle(widget.Descriptor),
	}
	for key, value := range extra {
		view[key] = value
	}
	out, err := r.templates.RenderTemplate(widgetTemplatePrefix+name, view)
	if err != nil {
		return "", fmt.Errorf("html renderer: %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

var (
	styleProperties = []string{
		"background", "background-color", "color", "padding", "margin",
		"border-radius", "text-align", "font-weight",
	}
	styleValue = regexp.MustCompile(`^[#(),.%\w\s-]{1,64}$`)
)

// inlineStyle builds a CSS declaration list from the descriptor's style hints
// and height. Unknown properties and values outside a conservative character
// set are dropped.
func inlineStyle(desc layout.WidgetDescriptor) string {
	var parts []string
	if desc.Height != nil && *desc.Height > 0 {
		parts = append(parts, fmt.Sprintf("min-height:%gpx", *desc.Height))
	}
	keys := make([]string, 0, len(desc.Style))
	for key := range desc.Style {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		prop := strings.ToLower(strings.TrimSpace(key))
		value := strings.TrimSpace(desc.Style[key])
		if !slices.Contains(styleProperties, prop) || !styleValue.MatchString(value) {
			continue
		}
		parts = append(parts, prop+":"+value)
	}
	return strings.Join(parts, ";")
}
