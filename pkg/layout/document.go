package layout

import (
	"errors"
	"path/filepath"
	"strings"
)

// Document wraps a raw layout payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("layout: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("layout: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Layout decodes the document. YAML is tried first for .yaml/.yml locations,
// JSON otherwise, falling back to the other format.
func (d Document) Layout() (*PageLayout, error) {
	ext := strings.ToLower(filepath.Ext(d.Location()))
	if ext == ".yaml" || ext == ".yml" {
		if page, err := DecodeYAML(d.raw); err == nil {
			return page, nil
		}
		return DecodeJSON(d.raw)
	}
	return Decode(d.raw)
}
