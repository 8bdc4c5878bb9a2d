package html

import (
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-sdui/pkg/catalog"
	rendertemplate "github.com/goliatone/go-sdui/pkg/render/template"
)

// DefaultFetchTimeout bounds catalog fetches issued by widgets.
const DefaultFetchTimeout = 5 * time.Second

// Option configures the HTML renderers.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	catalog          catalog.Provider
	now              func() time.Time
	fetchTimeout     time.Duration
	logger           zerolog.Logger
	stylesheet       *string
}

// WithTemplatesFS supplies an alternate template bundle. It must contain the
// same paths as TemplatesFS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a template engine, bypassing the pongo2 default.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithCatalog sets the provider used by product and category widgets.
func WithCatalog(provider catalog.Provider) Option {
	return func(cfg *config) {
		cfg.catalog = provider
	}
}

// WithClock overrides time.Now for countdown widgets.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.fetchTimeout = timeout
		}
	}
}

// WithLogger injects a zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithStylesheet replaces the inline page stylesheet. An empty string removes it.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = &css
	}
}
