// Package sdui wires the server driven UI engine together: layout provider,
// widget registry, resolver, renderer, HTML composer, and host screens.
package sdui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	internalloader "github.com/goliatone/go-sdui/internal/provider/loader"
	"github.com/goliatone/go-sdui/pkg/catalog"
	"github.com/goliatone/go-sdui/pkg/config"
	"github.com/goliatone/go-sdui/pkg/fetch"
	"github.com/goliatone/go-sdui/pkg/host"
	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/provider"
	"github.com/goliatone/go-sdui/pkg/render"
	"github.com/goliatone/go-sdui/pkg/renderers/html"
	"github.com/goliatone/go-sdui/pkg/resolver"
	"github.com/goliatone/go-sdui/pkg/telemetry"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

// NewLoader constructs a layout loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...provider.LoaderOption) provider.Loader {
	return internalloader.New(provider.NewLoaderOptions(options...))
}

// Option customises NewEngine.
type Option func(*engineOptions)

type engineOptions struct {
	logger      *telemetry.Logger
	metrics     *telemetry.Metrics
	provider    provider.Provider
	catalog     catalog.Provider
	htmlOptions []html.Option
	registry    func(*widgets.Registry) error
	sink        resolver.DiagnosticSink
}

// WithLogger sets the engine logger.
func WithLogger(logger *telemetry.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics sink shared by resolver, renderer, and screens.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithProvider overrides the layout provider derived from configuration.
func WithProvider(p provider.Provider) Option {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithCatalog overrides the catalog fixture named in configuration.
func WithCatalog(c catalog.Provider) Option {
	return func(o *engineOptions) {
		o.catalog = c
	}
}

// WithHTMLOptions forwards options to the built-in HTML renderers.
func WithHTMLOptions(options ...html.Option) Option {
	return func(o *engineOptions) {
		o.htmlOptions = append(o.htmlOptions, options...)
	}
}

// WithWidgets lets callers register extra renderers or replace built-ins.
func WithWidgets(fn func(*widgets.Registry) error) Option {
	return func(o *engineOptions) {
		o.registry = fn
	}
}

// WithDiagnosticSink receives every resolver diagnostic.
func WithDiagnosticSink(sink resolver.DiagnosticSink) Option {
	return func(o *engineOptions) {
		o.sink = sink
	}
}

// Engine is a configured set of engine components. It is safe for concurrent
// use; each page gets its own host.Screen.
type Engine struct {
	cfg       config.Config
	logger    *telemetry.Logger
	metrics   *telemetry.Metrics
	provider  provider.Provider
	catalog   catalog.Provider
	registry  *widgets.Registry
	resolver  *resolver.Resolver
	renderer  *render.Renderer
	composer  *html.Composer
	renderers *html.Renderers
}

// NewEngine builds an Engine from cfg.
func NewEngine(cfg config.Config, options ...Option) (*Engine, error) {
	opts := engineOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	if opts.logger == nil {
		opts.logger = telemetry.Nop()
	}
	if opts.metrics == nil {
		metrics, err := telemetry.NewMetrics(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("sdui: metrics: %w", err)
		}
		opts.metrics = metrics
	}
	logger := opts.logger.Component("engine").Zerolog()

	layouts := opts.provider
	if layouts == nil {
		p, err := newProvider(cfg.Layouts)
		if err != nil {
			return nil, err
		}
		layouts = p
	}

	items := opts.catalog
	if items == nil && cfg.Catalog.Fixture != "" {
		mem, err := catalog.LoadFile(cfg.Catalog.Fixture)
		if err != nil {
			return nil, fmt.Errorf("sdui: %w", err)
		}
		for _, rejected := range mem.Rejected() {
			logger.Warn().Err(rejected).Str("fixture", cfg.Catalog.Fixture).Msg("catalog record skipped")
		}
		items = mem
	}

	htmlOptions := []html.Option{
		html.WithLogger(opts.logger.Component("widgets").Zerolog()),
		html.WithFetchTimeout(cfg.Render.FetchTimeout),
	}
	if items != nil {
		htmlOptions = append(htmlOptions, html.WithCatalog(items))
	}
	if cfg.Render.TemplatesDir != "" {
		htmlOptions = append(htmlOptions, html.WithTemplatesDir(cfg.Render.TemplatesDir))
	}
	htmlOptions = append(htmlOptions, opts.htmlOptions...)

	renderers, err := html.New(htmlOptions...)
	if err != nil {
		return nil, fmt.Errorf("sdui: %w", err)
	}
	registry := widgets.NewRegistry()
	if err := renderers.Register(registry); err != nil {
		return nil, fmt.Errorf("sdui: %w", err)
	}
	if opts.registry != nil {
		if err := opts.registry(registry); err != nil {
			return nil, fmt.Errorf("sdui: register widgets: %w", err)
		}
	}

	fallback, err := cfg.FallbackLayout()
	if err != nil {
		return nil, fmt.Errorf("sdui: %w", err)
	}
	res, err := resolver.New(registry,
		resolver.WithTimeout(cfg.Resolver.Timeout),
		resolver.WithDefaultLayout(fallback),
		resolver.WithLogger(opts.logger.Component("resolver").Zerolog()),
		resolver.WithRecorder(opts.metrics),
		resolver.WithDiagnosticSink(opts.sink),
	)
	if err != nil {
		return nil, fmt.Errorf("sdui: %w", err)
	}

	composer, err := html.NewComposer(renderers)
	if err != nil {
		return nil, fmt.Errorf("sdui: %w", err)
	}

	return &Engine{
		cfg:      cfg,
		logger:   opts.logger,
		metrics:  opts.metrics,
		provider: layouts,
		catalog:  items,
		registry: registry,
		resolver: res,
		renderer: render.New(
			render.WithLogger(opts.logger.Component("render").Zerolog()),
			render.WithRecorder(opts.metrics),
		),
		composer:  composer,
		renderers: renderers,
	}, nil
}

func newProvider(cfg config.LayoutsConfig) (*provider.SourceProvider, error) {
	if cfg.URL != "" {
		loaderOptions := []provider.LoaderOption{provider.WithHTTPFallback(cfg.Timeout)}
		for key, value := range cfg.Headers {
			loaderOptions = append(loaderOptions, provider.WithHeader(key, value))
		}
		p, err := provider.NewURL(NewLoader(loaderOptions...), cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("sdui: %w", err)
		}
		return p, nil
	}
	if cfg.Dir == "" {
		return nil, errors.New("sdui: no layout source configured")
	}
	p, err := provider.NewDirectory(NewLoader(), cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("sdui: %w", err)
	}
	return p, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Logger returns the engine logger.
func (e *Engine) Logger() *telemetry.Logger {
	return e.logger
}

// Metrics returns the metrics sink.
func (e *Engine) Metrics() *telemetry.Metrics {
	return e.metrics
}

// MetricsHandler serves the engine's Prometheus registry.
func (e *Engine) MetricsHandler() http.Handler {
	return e.metrics.Handler()
}

// Registry returns the widget registry.
func (e *Engine) Registry() *widgets.Registry {
	return e.registry
}

// Pages lists the pages the layout provider can serve, when it can list them.
func (e *Engine) Pages() ([]string, error) {
	lister, ok := e.provider.(interface{ Pages() ([]string, error) })
	if !ok {
		return nil, nil
	}
	return lister.Pages()
}

// NewScreen returns a host screen for page. Callers own the screen and must
// Close it.
func (e *Engine) NewScreen(page string) (*host.Screen, error) {
	return host.NewScreen(
		provider.RequestFunc(e.provider, page),
		e.resolver,
		e.renderer,
		host.WithLogger(e.logger.Component("host").Zerolog()),
		host.WithRecorder(e.metrics),
		host.WithPageType(page),
	)
}

// Validate normalises page without rendering it.
func (e *Engine) Validate(page *layout.PageLayout) resolver.Result {
	return e.resolver.Normalise(page)
}

// Compose renders a screen state as a full HTML document.
func (e *Engine) Compose(state host.State) (string, error) {
	return e.composer.Page(state.Units, html.PageOptions{
		PageType: state.PageType,
		PassID:   state.PassID,
		Degraded: state.Phase == host.PhaseDegraded,
	})
}

// Page is a settled render of one page.
type Page struct {
	State host.State
	HTML  string
}

// RenderPage loads page once, waits for secondary fetches to settle, and
// composes the result.
func (e *Engine) RenderPage(ctx context.Context, page string) (Page, error) {
	screen, err := e.NewScreen(page)
	if err != nil {
		return Page{}, err
	}
	defer screen.Close()

	if _, err := screen.Load(ctx); err != nil {
		return Page{}, err
	}
	state := e.Settle(ctx, screen)

	markup, err := e.Compose(state)
	if err != nil {
		return Page{}, err
	}
	return Page{State: state, HTML: markup}, nil
}

// Settle waits until no unit of screen has a secondary fetch in flight, or
// the render fetch timeout (plus a second of slack) elapses, and returns the
// state observed last.
func (e *Engine) Settle(ctx context.Context, screen *host.Screen) host.State {
	changed := make(chan struct{}, 1)
	unsubscribe := screen.Subscribe(func(host.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	wait := e.cfg.Render.FetchTimeout
	if wait <= 0 {
		wait = html.DefaultFetchTimeout
	}
	settleCtx, cancel := context.WithTimeout(ctx, wait+time.Second)
	defer cancel()

	state := screen.State()
	for pending(state) {
		select {
		case <-changed:
			state = screen.State()
		case <-settleCtx.Done():
			zlog := e.logger.Component("engine").Zerolog()
			zlog.Warn().
				Str("page", state.PageType).
				Msg("secondary fetches still pending, rendering placeholders")
			return screen.State()
		}
	}
	return state
}

func pending(state host.State) bool {
	if state.IsLoading() {
		return true
	}
	for _, unit := range state.Units {
		if unit.Output.Fetch == fetch.StateLoading {
			return true
		}
	}
	return false
}
