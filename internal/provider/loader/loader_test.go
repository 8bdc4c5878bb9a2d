package loader_test

import (
	"context"
	"errors"
	"io/fs"
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

const homeJSON = `{"pageType":"home","widgets":[{"id":"gap","type":"spacer","data":{"height":12}}]}`

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "home.json")
	if err := os.WriteFile(path, []byte(homeJSON), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := loader.New(provider.NewLoaderOptions())
	doc, err := l.Load(context.Background(), layout.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, err := doc.Layout()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"gap"}, []string{page.Widgets[0].ID}); diff != "" {
		t.Fatalf("widgets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_MissingFileIsNotExist(t *testing.T) {
	l := loader.New(provider.NewLoaderOptions())
	_, err := l.Load(context.Background(), layout.SourceFromFile(filepath.Join(t.TempDir(), "nope.json")))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{"layouts/home.json": {Data: []byte(homeJSON)}}
	l := loader.New(provider.NewLoaderOptions(provider.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), layout.SourceFromFS("layouts/home.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != "layouts/home.json" {
		t.Fatalf("unexpected location %q", doc.Location())
	}
}

func TestLoader_HTTP(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Authorization")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(homeJSON))
	}))
	defer srv.Close()

	l := loader.New(provider.NewLoaderOptions(
		provider.WithHTTPFallback(time.Second),
		provider.WithHeader("Authorization", "Bearer test"),
	))

	if _, err := l.Load(context.Background(), layout.SourceFromURL(srv.URL+"/home")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotToken != "Bearer test" {
		t.Fatalf("expected auth header, got %q", gotToken)
	}

	_, err := l.Load(context.Background(), layout.SourceFromURL(srv.URL+"/missing"))
	var statusErr *loader.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected 404 to match fs.ErrNotExist")
	}
}

func TestLoader_HTTPDisabled(t *testing.T) {
	l := loader.New(provider.NewLoaderOptions())
	if _, err := l.Load(context.Background(), layout.SourceFromURL("https://example.com/home")); err == nil {
		t.Fatalf("expected error when http is disabled")
	}
}
