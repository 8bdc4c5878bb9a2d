// Package html provides HTML renderers for the recommended widget types and a
// Composer that assembles rendered units into a page.
//
// Renderers are template driven: every widget decodes its payload with a
// payload.Schema, renders templates/widgets/<type>.tmpl from the embedded
// bundle (or a caller supplied one), and returns a widgets.Output. Catalog
// backed widgets return a placeholder immediately and publish the final markup
// through widgets.Context.Update once their fetch settles.
package html
