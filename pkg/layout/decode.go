package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when a payload has no content at all.
var ErrEmptyDocument = errors.New("layout: document is empty")

// Decode parses a JSON or YAML layout document. JSON is attempted first.
func Decode(data []byte) (*PageLayout, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	page, jsonErr := DecodeJSON(data)
	if jsonErr == nil {
		return page, nil
	}
	page, yamlErr := DecodeYAML(data)
	if yamlErr == nil {
		return page, nil
	}
	return nil, fmt.Errorf("layout: invalid JSON or YAML: %w", errors.Join(jsonErr, yamlErr))
}

// DecodeJSON parses a JSON layout document. A JSON null decodes to a nil
// layout without error so callers can treat it as a missing response.
func DecodeJSON(data []byte) (*PageLayout, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var page PageLayout
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("layout: decode json: %w", err)
	}
	return &page, nil
}

// DecodeYAML parses a YAML layout document. The YAML tree is normalised into
// its JSON equivalent so widget payloads keep the same raw JSON form
// regardless of the document format.
func DecodeYAML(data []byte) (*PageLayout, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("layout: decode yaml: %w", err)
	}
	if tree == nil {
		return nil, nil
	}
	if _, ok := tree.(map[string]any); !ok {
		return nil, fmt.Errorf("layout: decode yaml: expected a mapping at document root")
	}
	normalised, err := normaliseYAML(tree)
	if err != nil {
		return nil, fmt.Errorf("layout: decode yaml: %w", err)
	}
	raw, err := json.Marshal(normalised)
	if err != nil {
		return nil, fmt.Errorf("layout: decode yaml: %w", err)
	}
	return DecodeJSON(raw)
}

func normaliseYAML(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := normaliseYAML(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := normaliseYAML(item)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(key)] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			converted, err := normaliseYAML(item)
			if err != nil {
				return nil, err
			}
			out[idx] = converted
		}
		return out, nil
	default:
		return v, nil
	}
}
