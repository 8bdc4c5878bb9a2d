package html

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-sdui/pkg/render"
)

const pageTemplate = "templates/page"

// PageOptions are the page level values passed to the page template.
type PageOptions struct {
	Title        string
	Lang         string
	PageType     string
	PassID       string
	Degraded     bool
	DegradedText string
}

// Composer assembles rendered units into a full HTML document.
type Composer struct {
	renderers *Renderers
}

// NewComposer returns a Composer sharing the renderers' template engine.
func NewComposer(renderers *Renderers) (*Composer, error) {
	if renderers == nil || renderers.templates == nil {
		return nil, fmt.Errorf("html composer: renderers are required")
	}
	return &Composer{renderers: renderers}, nil
}

// Page renders units in order. Units that show nothing (unsupported, failed,
// or collapsed) are left out so they occupy no space.
func (c *Composer) Page(units []render.RenderedUnit, opts PageOptions, out ...io.Writer) (string, error) {
	items := make([]map[string]any, 0, len(units))
	for _, unit := range units {
		if !unit.Visible() || strings.TrimSpace(unit.Output.HTML) == "" {
			continue
		}
		items = append(items, map[string]any{
			"key":   unit.Key,
			"type":  unit.Type,
			"state": string(unit.State),
			"fetch": string(unit.Output.Fetch),
			"html":  unit.Output.HTML,
		})
	}

	title := opts.Title
	if title == "" {
		title = opts.PageType
	}
	degradedText := opts.DegradedText
	if degradedText == "" {
		degradedText = "We couldn't load the latest content. Pull to refresh."
	}

	result, err := c.renderers.templates.RenderTemplate(pageTemplate, map[string]any{
		"title":        title,
		"lang":         opts.Lang,
		"pageType":     opts.PageType,
		"passId":       opts.PassID,
		"degraded":     opts.Degraded,
		"degradedText": degradedText,
		"stylesheet":   c.renderers.stylesheet,
		"units":        items,
	}, out...)
	if err != nil {
		return "", fmt.Errorf("html composer: render page: %w", err)
	}
	return result, nil
}
