// Package widgets decouples widget type tags from their rendering
// implementations. Registries are plain values built at startup and passed to
// the page renderer; there is no package level registry.
package widgets
