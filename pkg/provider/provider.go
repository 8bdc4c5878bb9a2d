// Package provider maps page types to layout sources and loads them. It is
// the default implementation behind the host's RequestLayout capability.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goliatone/go-sdui/pkg/host"
	"github.com/goliatone/go-sdui/pkg/layout"
)

// ErrPageNotFound is returned when no source exists for a page.
var ErrPageNotFound = errors.New("provider: page not found")

// PagePlaceholder is substituted with the escaped page type in URL templates.
const PagePlaceholder = "{page}"

var layoutExtensions = []string{".json", ".yaml", ".yml"}

// Provider returns the layout for a page type.
type Provider interface {
	Fetch(ctx context.Context, page string) (*layout.PageLayout, error)
}

// SourceFunc lists the candidate sources for a page, tried in order.
type SourceFunc func(page string) ([]layout.Source, error)

// SourceProvider loads layouts through a Loader using a page to source mapping.
type SourceProvider struct {
	loader  Loader
	sources SourceFunc
	pages   func() ([]string, error)
}

var _ Provider = (*SourceProvider)(nil)

// New wires a loader with a source mapping.
func New(loader Loader, sources SourceFunc) (*SourceProvider, error) {
	if loader == nil {
		return nil, errors.New("provider: loader is required")
	}
	if sources == nil {
		return nil, errors.New("provider: source mapping is required")
	}
	return &SourceProvider{loader: loader, sources: sources}, nil
}

// NewDirectory serves <dir>/<page>.json, .yaml or .yml from disk.
func NewDirectory(loader Loader, dir string) (*SourceProvider, error) {
	p, err := New(loader, func(page string) ([]layout.Source, error) {
		name, err := cleanPage(page)
		if err != nil {
			return nil, err
		}
		out := make([]layout.Source, 0, len(layoutExtensions))
		for _, ext := range layoutExtensions {
			out = append(out, layout.SourceFromFile(filepath.Join(dir, name+ext)))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	p.pages = func() ([]string, error) {
		return listPages(os.DirFS(dir))
	}
	return p, nil
}

// NewFS serves <root>/<page>.json, .yaml or .yml from the loader's fs.FS.
// files is only used to list pages and may be nil.
func NewFS(loader Loader, files fs.FS, root string) (*SourceProvider, error) {
	p, err := New(loader, func(page string) ([]layout.Source, error) {
		name, err := cleanPage(page)
		if err != nil {
			return nil, err
		}
		out := make([]layout.Source, 0, len(layoutExtensions))
		for _, ext := range layoutExtensions {
			out = append(out, layout.SourceFromFS(path.Join(root, name+ext)))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if files != nil {
		p.pages = func() ([]string, error) {
			sub, err := fs.Sub(files, root)
			if err != nil {
				return nil, err
			}
			return listPages(sub)
		}
	}
	return p, nil
}

// NewURL requests layouts from an endpoint template such as
// https://api.example.com/layouts/{page}. Templates without the placeholder
// get the page appended as a "page" query parameter.
func NewURL(loader Loader, template string) (*SourceProvider, error) {
	if _, err := layout.ParseURLSource(strings.ReplaceAll(template, PagePlaceholder, "home")); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	return New(loader, func(page string) ([]layout.Source, error) {
		name, err := cleanPage(page)
		if err != nil {
			return nil, err
		}
		raw := template
		if strings.Contains(raw, PagePlaceholder) {
			raw = strings.ReplaceAll(raw, PagePlaceholder, url.PathEscape(name))
		} else {
			parsed, err := url.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("provider: %w", err)
			}
			query := parsed.Query()
			query.Set("page", name)
			parsed.RawQuery = query.Encode()
			raw = parsed.String()
		}
		src, err := layout.ParseURLSource(raw)
		if err != nil {
			return nil, fmt.Errorf("provider: %w", err)
		}
		return []layout.Source{src}, nil
	})
}

// NewStatic always returns the layout found at src, whatever the page.
func NewStatic(loader Loader, src layout.Source) (*SourceProvider, error) {
	if src == nil {
		return nil, errors.New("provider: source is required")
	}
	return New(loader, func(string) ([]layout.Source, error) {
		return []layout.Source{src}, nil
	})
}

// Fetch loads and decodes the first existing source for page.
func (p *SourceProvider) Fetch(ctx context.Context, page string) (*layout.PageLayout, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sources, err := p.sources(page)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrPageNotFound, page)
	}

	var lastErr error
	for _, src := range sources {
		doc, err := p.loader.Load(ctx, src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("provider: load %s: %w", src.Location(), err)
		}
		decoded, err := doc.Layout()
		if err != nil {
			return nil, fmt.Errorf("provider: decode %s: %w", src.Location(), err)
		}
		if decoded != nil && decoded.PageType == "" {
			decoded.PageType = page
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: %q: %w", ErrPageNotFound, page, lastErr)
}

// Pages lists the page types a directory or fs backed provider can serve.
// URL and static providers return nil.
func (p *SourceProvider) Pages() ([]string, error) {
	if p.pages == nil {
		return nil, nil
	}
	return p.pages()
}

// RequestFunc adapts a provider to the host capability for a single page.
func RequestFunc(p Provider, page string) host.RequestLayout {
	return func(ctx context.Context) (*layout.PageLayout, error) {
		if p == nil {
			return nil, errors.New("provider: provider is nil")
		}
		return p.Fetch(ctx, page)
	}
}

func cleanPage(page string) (string, error) {
	name := strings.TrimSpace(page)
	if name == "" {
		return "", errors.New("provider: page is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("provider: invalid page %q", page)
	}
	return name, nil
}

func listPages(files fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("provider: list pages: %w", err)
	}
	seen := make(map[string]struct{})
	var pages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Name()))
		if !slices.Contains(layoutExtensions, ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		pages = append(pages, name)
	}
	slices.Sort(pages)
	return pages, nil
}
