// Package config loads the engine, server, and CLI settings from YAML or JSON.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/telemetry"
)

// Config is the root configuration document.
type Config struct {
	Logging  telemetry.LoggingConfig `json:"logging" yaml:"logging"`
	Metrics  telemetry.MetricsConfig `json:"metrics" yaml:"metrics"`
	Layouts  LayoutsConfig           `json:"layouts" yaml:"layouts"`
	Catalog  CatalogConfig           `json:"catalog" yaml:"catalog"`
	Resolver ResolverConfig          `json:"resolver" yaml:"resolver"`
	Render   RenderConfig            `json:"render" yaml:"render"`
	Server   ServerConfig            `json:"server" yaml:"server"`
}

// LayoutsConfig selects where page layouts come from. Exactly one of Dir or
// URL is used; URL wins when both are set.
type LayoutsConfig struct {
	Dir     string            `json:"dir" yaml:"dir" validate:"required_without=URL"`
	URL     string            `json:"url" yaml:"url" validate:"omitempty,url"`
	Timeout time.Duration     `json:"timeout" yaml:"timeout" validate:"gte=0"`
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// CatalogConfig points at a catalog fixture for data backed widgets.
type CatalogConfig struct {
	Fixture string `json:"fixture" yaml:"fixture"`
}

// ResolverConfig tunes the layout resolver.
type ResolverConfig struct {
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"`
	// Fallback is a layout file replacing the built-in default layout.
	Fallback string `json:"fallback" yaml:"fallback"`
}

// RenderConfig tunes widget rendering.
type RenderConfig struct {
	FetchTimeout time.Duration `json:"fetchTimeout" yaml:"fetchTimeout" validate:"gte=0"`
	TemplatesDir string        `json:"templatesDir" yaml:"templatesDir"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" validate:"required"`
	Watch           bool          `json:"watch" yaml:"watch"`
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout" validate:"gte=0"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout" validate:"gte=0"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Logging: telemetry.DefaultLoggingConfig(),
		Metrics: telemetry.MetricsConfig{Enabled: true, Namespace: "sdui"},
		Layouts: LayoutsConfig{
			Dir:     "layouts",
			Timeout: 10 * time.Second,
		},
		Resolver: ResolverConfig{
			Timeout: 10 * time.Second,
		},
		Render: RenderConfig{
			FetchTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges a YAML (or JSON) document into cfg. Durations use Go syntax
// such as "750ms" or "10s".
func (c *Config) Decode(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]error, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Errorf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid: %w", errors.Join(msgs...))
		}
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// FallbackLayout loads Resolver.Fallback, or returns nil when unset.
func (c Config) FallbackLayout() (*layout.PageLayout, error) {
	if c.Resolver.Fallback == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(c.Resolver.Fallback)
	if err != nil {
		return nil, fmt.Errorf("config: read fallback layout: %w", err)
	}
	doc, err := layout.NewDocument(layout.SourceFromFile(c.Resolver.Fallback), raw)
	if err != nil {
		return nil, fmt.Errorf("config: fallback layout: %w", err)
	}
	page, err := doc.Layout()
	if err != nil {
		return nil, fmt.Errorf("config: fallback layout: %w", err)
	}
	if !page.HasWidgets() {
		return nil, fmt.Errorf("config: fallback layout %s has no widgets", c.Resolver.Fallback)
	}
	return page, nil
}
