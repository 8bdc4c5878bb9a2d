package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sdui/internal/provider/loader"
	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/provider"
)

const homeYAML = `
pageType: home
refreshInterval: 30
widgets:
  - id: hero
    type: banner_carousel
    data:
      banners: []
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectory_FetchFallsThroughExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "home.yaml", homeYAML)
	writeFile(t, dir, "deals.json", `{"widgets":[]}`)
	writeFile(t, dir, "notes.txt", "ignored")

	p, err := provider.NewDirectory(loader.New(provider.NewLoaderOptions()), dir)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	page, err := p.Fetch(context.Background(), "home")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.RefreshInterval != 30*time.Second {
		t.Fatalf("unexpected refresh interval %s", page.RefreshInterval)
	}

	deals, err := p.Fetch(context.Background(), "deals")
	if err != nil {
		t.Fatalf("fetch deals: %v", err)
	}
	if deals.PageType != "deals" {
		t.Fatalf("expected page type defaulted to deals, got %q", deals.PageType)
	}

	pages, err := p.Pages()
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	if diff := cmp.Diff([]string{"deals", "home"}, pages); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectory_UnknownPage(t *testing.T) {
	p, err := provider.NewDirectory(loader.New(provider.NewLoaderOptions()), t.TempDir())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := p.Fetch(context.Background(), "missing"); !errors.Is(err, provider.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if _, err := p.Fetch(context.Background(), "../etc"); err == nil {
		t.Fatalf("expected error for path traversal")
	}
}

func TestFS_Fetch(t *testing.T) {
	files := fstest.MapFS{
		"layouts/home.json": {Data: []byte(`{"pageType":"home","widgets":[]}`)},
	}
	l := loader.New(provider.NewLoaderOptions(provider.WithFileSystem(files)))
	p, err := provider.NewFS(l, files, "layouts")
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	page, err := p.Fetch(context.Background(), "home")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !page.HasWidgets() {
		t.Fatalf("expected empty widgets sequence to be present")
	}
}

func TestURL_SubstitutesPage(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		_, _ = w.Write([]byte(`{"widgets":[]}`))
	}))
	defer srv.Close()

	l := loader.New(provider.NewLoaderOptions(provider.WithHTTPFallback(time.Second)))

	templated, err := provider.NewURL(l, srv.URL+"/layouts/{page}")
	if err != nil {
		t.Fatalf("new url provider: %v", err)
	}
	if _, err := templated.Fetch(context.Background(), "home"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	query, err := provider.NewURL(l, srv.URL+"/layout")
	if err != nil {
		t.Fatalf("new url provider: %v", err)
	}
	if _, err := query.Fetch(context.Background(), "deals"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if diff := cmp.Diff([]string{"/layouts/home", "/layout?page=deals"}, paths); diff != "" {
		t.Fatalf("request paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestFunc(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "home.yaml", homeYAML)
	p, err := provider.NewStatic(loader.New(provider.NewLoaderOptions()), layout.SourceFromFile(filepath.Join(dir, "home.yaml")))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	request := provider.RequestFunc(p, "anything")
	page, err := request(context.Background())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if page.PageType != "home" {
		t.Fatalf("expected home layout, got %q", page.PageType)
	}
}
