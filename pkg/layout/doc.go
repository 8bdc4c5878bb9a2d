// Package layout defines the server supplied page description consumed by the
// SDUI engine: an ordered list of typed widget descriptors with opaque
// payloads plus page level metadata. Layouts can be decoded from JSON or YAML
// documents; decoding never interprets widget payloads, which stay raw JSON
// until the renderer registered for the widget type decodes them with its own
// schema.
package layout
