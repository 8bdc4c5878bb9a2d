// Package testsupport holds fixtures and golden helpers shared by tests.
package testsupport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-sdui/pkg/layout"
)

// LoadLayout reads a JSON or YAML layout fixture. Testing helpers fail the
// test on error to keep contract tests concise.
func LoadLayout(t *testing.T, path string) *layout.PageLayout {
	t.Helper()

	page, err := LoadLayoutFromPath(path)
	if err != nil {
		t.Fatalf("load layout: %v", err)
	}
	return page
}

// LoadLayoutFromPath returns a decoded layout without requiring testing.T,
// allowing callers to wire fixtures in setup functions.
func LoadLayoutFromPath(path string) (*layout.PageLayout, error) {
	if path == "" {
		return nil, errors.New("testsupport: layout path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read layout: %w", err)
	}
	doc, err := layout.NewDocument(layout.SourceFromFile(path), data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: new document: %w", err)
	}
	page, err := doc.Layout()
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode layout: %w", err)
	}
	return page, nil
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
