package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sdui/pkg/config"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "sdui.yaml", `
logging:
  level: debug
  format: json
layouts:
  dir: ""
  url: https://api.example.com/layouts/{page}
  timeout: 750ms
  headers:
    Authorization: Bearer token
resolver:
  timeout: 2s
server:
  addr: 127.0.0.1:9090
  watch: true
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := config.Default()
	want.Logging.Level = "debug"
	want.Logging.Format = "json"
	want.Layouts.Dir = ""
	want.Layouts.URL = "https://api.example.com/layouts/{page}"
	want.Layouts.Timeout = 750 * time.Millisecond
	want.Layouts.Headers = map[string]string{"Authorization": "Bearer token"}
	want.Resolver.Timeout = 2 * time.Second
	want.Server.Addr = "127.0.0.1:9090"
	want.Server.Watch = true

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad level":     "logging:\n  level: loud\n",
		"unknown field": "layouts:\n  directory: x\n",
		"no source":     "layouts:\n  dir: \"\"\n",
		"bad url":       "layouts:\n  url: not a url\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Load(writeConfig(t, "sdui.yaml", body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFallbackLayout(t *testing.T) {
	path := writeConfig(t, "fallback.yaml", `
pageType: fallback
widgets:
  - id: notice
    type: offer_banner
    data:
      title: Offline
`)
	cfg := config.Default()
	cfg.Resolver.Fallback = path

	page, err := cfg.FallbackLayout()
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if len(page.Widgets) != 1 || page.Widgets[0].ID != "notice" {
		t.Fatalf("unexpected fallback layout: %+v", page)
	}
	if !strings.Contains(string(page.Widgets[0].Data), "Offline") {
		t.Fatalf("payload lost: %s", page.Widgets[0].Data)
	}

	cfg.Resolver.Fallback = ""
	if page, err := cfg.FallbackLayout(); err != nil || page != nil {
		t.Fatalf("expected nil fallback, got %v %v", page, err)
	}
}
