package html

import (
	"context"

	"github.com/goliatone/go-sdui/pkg/catalog"
	"github.com/goliatone/go-sdui/pkg/fetch"
	"github.com/goliatone/go-sdui/pkg/payload"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

type categoryGridData struct {
	Title       string   `json:"title"`
	Columns     int      `json:"columns"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
	Limit       int      `json:"limit"`
}

// categoryGrid lists categories from the catalog. An empty payload lists every
// category.
func (r *Renderers) categoryGrid(ctx context.Context, w widgets.Context) (widgets.Output, error) {
	var data categoryGridData
	if err := categoryGridSchema.Decode(w.Descriptor.Data, &data); err != nil {
		return widgets.Output{}, err
	}
	query := catalog.Query{CategoryIDs: data.CategoryIDs, Limit: data.Limit}

	return r.deferred(ctx, w, "category_grid", data, func(ctx context.Context) (map[string]any, error) {
		categories, err := r.catalog.Categories(ctx, query)
		if err != nil {
			return nil, err
		}
		for idx := range categories {
			categories[idx].ImageURL = safeURL(categories[idx].ImageURL)
		}
		return map[string]any{"categories": categories, "count": len(categories)}, nil
	})
}

type productListData struct {
	Title      string `json:"title"`
	CategoryID string `json:"categoryId,omitempty"`
	Collection string `json:"collection,omitempty"`
	Columns    int    `json:"columns"`
	Limit      int    `json:"limit"`
	ShowPrice  bool   `json:"showPrice"`
}

// productList backs product_rail and product_grid; they differ only in
// schema defaults and template.
func (r *Renderers) productList(schema *payload.Schema, name string) widgets.RendererFunc {
	return func(ctx context.Context, w widgets.Context) (widgets.Output, error) {
		var data productListData
		if err := schema.Decode(w.Descriptor.Data, &data); err != nil {
			return widgets.Output{}, err
		}
		query := catalog.Query{CategoryID: data.CategoryID, Collection: data.Collection, Limit: data.Limit}

		return r.deferred(ctx, w, name, data, func(ctx context.Context) (map[string]any, error) {
			products, err := r.catalog.Products(ctx, query)
			if err != nil {
				return nil, err
			}
			for idx := range products {
				products[idx].ImageURL = safeURL(products[idx].ImageURL)
			}
			return map[string]any{"products": products, "count": len(products)}, nil
		})
	}
}

// deferred returns a placeholder straight away and renders the widget once
// load settles. A failed load replaces the placeholder with nothing so the
// widget collapses without affecting its neighbours.
func (r *Renderers) deferred(ctx context.Context, w widgets.Context, name string, data any, load func(context.Context) (map[string]any, error)) (widgets.Output, error) {
	logger := r.logger.With().Str("widget_key", w.Key).Str("widget_type", w.Descriptor.Type).Logger()

	if r.catalog == nil {
		logger.Debug().Err(ErrCatalogUnavailable).Msg("catalog widget collapsed")
		return widgets.Output{Fetch: fetch.StateFailed}, nil
	}

	placeholder, err := r.render(ctx, "placeholder", w, data, map[string]any{"widget": name})
	if err != nil {
		return widgets.Output{}, err
	}

	task := fetch.NewTask[map[string]any](fetch.WithTimeout(r.fetchTimeout))
	task.OnChange(func(snap fetch.Snapshot[map[string]any]) {
		switch snap.State {
		case fetch.StateReady:
			out, err := r.render(ctx, name, w, data, snap.Value)
			if err != nil {
				logger.Warn().Err(err).Msg("catalog widget render failed")
				w.Update(widgets.Output{Fetch: fetch.StateFailed})
				return
			}
			props := map[string]any{"count": snap.Value["count"]}
			w.Update(widgets.Output{HTML: out, Props: props, Fetch: fetch.StateReady})
		case fetch.StateFailed:
			logger.Warn().Err(snap.Err).Msg("catalog fetch failed")
			w.Update(widgets.Output{Fetch: fetch.StateFailed})
		}
	})
	if err := task.Start(ctx, load); err != nil {
		return widgets.Output{}, err
	}

	return widgets.Output{HTML: placeholder, Fetch: fetch.StateLoading}, nil
}
