package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/provider"
)

// Loader implements provider.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	headers   http.Header
}

var _ provider.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options provider.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      client,
		allowHTTP: client != nil,
		timeout:   timeout,
		headers:   options.Headers.Clone(),
	}
}

// Load fetches the raw layout at src.
func (l *Loader) Load(ctx context.Context, src layout.Source) (layout.Document, error) {
	if src == nil {
		return layout.Document{}, errors.New("provider loader: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case layout.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case layout.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case layout.SourceKindURL:
		if !l.allowHTTP {
			return layout.Document{}, errors.New("provider loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout, l.headers)
	default:
		err = errors.New("provider loader: unsupported source kind")
	}
	if err != nil {
		return layout.Document{}, err
	}
	if len(data) == 0 {
		return layout.Document{}, layout.ErrEmptyDocument
	}

	return layout.NewDocument(src, data)
}
