// Package payload validates and decodes the opaque widget payloads carried by
// layout descriptors. Each renderer owns a Schema describing the data it
// accepts; decoding applies schema defaults before validation so renderers
// see complete values.
package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrInvalidPayload wraps every schema or decode failure.
var ErrInvalidPayload = errors.New("payload: invalid widget data")

// Schema is a compiled payload schema.
type Schema struct {
	name   string
	schema *openapi3.Schema
}

// Compile parses an OpenAPI schema object from JSON and checks it is well formed.
func Compile(name string, raw []byte) (*Schema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("payload: schema name is required")
	}
	schema := &openapi3.Schema{}
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("payload: parse %s schema: %w", name, err)
	}
	if err := schema.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("payload: validate %s schema: %w", name, err)
	}
	return &Schema{name: name, schema: schema}, nil
}

// MustCompile is Compile for package level schemas; it panics on error.
func MustCompile(name string, raw string) *Schema {
	schema, err := Compile(name, []byte(raw))
	if err != nil {
		panic(err)
	}
	return schema
}

// Name returns the schema name, usually the widget type it belongs to.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Decode validates data and unmarshals it into dst. A missing payload is
// treated as an empty object so schemas decide whether fields are required.
func (s *Schema) Decode(data json.RawMessage, dst any) error {
	if s == nil || s.schema == nil {
		return fmt.Errorf("%w: schema is nil", ErrInvalidPayload)
	}
	value, err := s.Validate(data)
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	normalised, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, s.name, err)
	}
	if err := json.Unmarshal(normalised, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, s.name, err)
	}
	return nil
}

// Validate checks data against the schema and returns the generic value with
// defaults filled in.
func (s *Schema) Validate(data json.RawMessage) (any, error) {
	value, err := s.parse(data)
	if err != nil {
		return nil, err
	}
	value = applyDefaults(s.schema, value)
	if err := s.schema.VisitJSON(value); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidPayload, s.name, firstLine(err.Error()))
	}
	return value, nil
}

// DecodeLenient is Decode for payloads whose fields are all optional hints.
// A top level field that does not match its own property schema is replaced
// by the property default instead of failing the whole payload.
func (s *Schema) DecodeLenient(data json.RawMessage, dst any) error {
	if s == nil || s.schema == nil {
		return fmt.Errorf("%w: schema is nil", ErrInvalidPayload)
	}
	value, err := s.parse(data)
	if err != nil {
		return err
	}
	if fields, ok := value.(map[string]any); ok {
		for name, ref := range s.schema.Properties {
			current, present := fields[name]
			if !present || ref == nil || ref.Value == nil {
				continue
			}
			if ref.Value.VisitJSON(current) != nil {
				delete(fields, name)
			}
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, s.name, err)
	}
	return s.Decode(raw, dst)
}

func (s *Schema) parse(data json.RawMessage) (any, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		trimmed = "{}"
	}
	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, s.name, err)
	}
	return value, nil
}

func applyDefaults(schema *openapi3.Schema, value any) any {
	if schema == nil {
		return value
	}
	switch typed := value.(type) {
	case map[string]any:
		for name, ref := range schema.Properties {
			if ref == nil || ref.Value == nil {
				continue
			}
			current, ok := typed[name]
			if !ok {
				if ref.Value.Default != nil {
					typed[name] = ref.Value.Default
				}
				continue
			}
			typed[name] = applyDefaults(ref.Value, current)
		}
		return typed
	case []any:
		if schema.Items == nil || schema.Items.Value == nil {
			return typed
		}
		for idx, item := range typed {
			typed[idx] = applyDefaults(schema.Items.Value, item)
		}
		return typed
	default:
		return value
	}
}

func firstLine(msg string) string {
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		return msg[:idx]
	}
	return msg
}
