package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPageFromPath(t *testing.T) {
	cases := []struct {
		path string
		page string
		ok   bool
	}{
		{path: "/layouts/home.json", page: "home", ok: true},
		{path: "layouts/deals.yaml", page: "deals", ok: true},
		{path: "promo.YML", page: "promo", ok: true},
		{path: "/layouts/.home.json.swp", ok: false},
		{path: "/layouts/README.md", ok: false},
		{path: "/layouts/.json", ok: false},
	}
	for _, tc := range cases {
		page, ok := pageFromPath(tc.path)
		if page != tc.page || ok != tc.ok {
			t.Fatalf("pageFromPath(%q) = %q, %v; want %q, %v", tc.path, page, ok, tc.page, tc.ok)
		}
	}
}

func TestWatcher_DebouncesWritesPerPage(t *testing.T) {
	dir := t.TempDir()
	reloads := make(chan string, 8)

	w, err := newWatcher(dir, 100*time.Millisecond, zerolog.Nop(), func(page string) {
		reloads <- page
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx)

	path := filepath.Join(dir, "home.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"widgets":[]}`), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case page := <-reloads:
		if page != "home" {
			t.Fatalf("expected home reload, got %q", page)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}

	select {
	case page := <-reloads:
		t.Fatalf("unexpected extra reload for %q", page)
	case <-time.After(300 * time.Millisecond):
	}
}
