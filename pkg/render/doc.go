// Package render walks a resolved render plan and materialises one unit per
// plan entry, in plan order. Failures are contained per widget: a renderer
// that errors or panics yields the empty unsupported unit for that widget
// only, and rendering continues with its siblings.
package render
