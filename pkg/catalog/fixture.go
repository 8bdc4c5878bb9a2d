package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFixture decodes a catalog fixture. YAML is used when name ends in
// .yaml or .yml, JSON otherwise.
func ParseFixture(name string, raw []byte) (Fixture, error) {
	var fixture Fixture
	if len(bytes.TrimSpace(raw)) == 0 {
		return fixture, errors.New("catalog: fixture is empty")
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fixture); err != nil {
			return Fixture{}, fmt.Errorf("catalog: decode yaml fixture %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(raw, &fixture); err != nil {
			return Fixture{}, fmt.Errorf("catalog: decode json fixture %s: %w", name, err)
		}
	}
	return fixture, nil
}

// LoadFile reads a fixture from disk and returns a Memory provider.
func LoadFile(path string) (*Memory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	fixture, err := ParseFixture(path, raw)
	if err != nil {
		return nil, err
	}
	return NewMemory(fixture), nil
}

// LoadFS reads a fixture from fsys.
func LoadFS(fsys fs.FS, name string) (*Memory, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	fixture, err := ParseFixture(name, raw)
	if err != nil {
		return nil, err
	}
	return NewMemory(fixture), nil
}
