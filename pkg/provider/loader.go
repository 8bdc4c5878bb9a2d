package provider

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-sdui/pkg/layout"
)

// Loader fetches raw layout documents from files, an fs.FS, or HTTP.
// The implementation lives under internal/provider/loader and is constructed
// through sdui.NewLoader.
type Loader interface {
	Load(ctx context.Context, src layout.Source) (layout.Document, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS locations.
	FileSystem fs.FS

	// HTTPClient is used for URL sources. Nil disables HTTP unless
	// AllowHTTPFallback is set.
	HTTPClient *http.Client

	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration

	// Headers are added to every HTTP request, e.g. auth tokens for a layout API.
	Headers http.Header
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS for SourceKindFS locations.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote layouts.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithHeader adds a request header sent with remote layout requests.
func WithHeader(key, value string) LoaderOption {
	return func(opts *LoaderOptions) {
		if opts.Headers == nil {
			opts.Headers = make(http.Header)
		}
		opts.Headers.Add(key, value)
	}
}

// NewLoaderOptions applies options and returns the resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}
