// Package template defines the template engine seam used by the HTML widget
// renderers. Adapters live in subpackages.
package template
