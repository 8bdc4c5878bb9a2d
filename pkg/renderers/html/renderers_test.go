package html_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sdui/pkg/catalog"
	"github.com/goliatone/go-sdui/pkg/fetch"
	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/payload"
	"github.com/goliatone/go-sdui/pkg/renderers/html"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testCatalog() *catalog.Memory {
	return catalog.NewMemory(catalog.Fixture{
		Categories: []catalog.Category{
			{ID: "shoes", Name: "Shoes", Position: 1},
			{ID: "bags", Name: "Bags", Position: 2},
		},
		Products: []catalog.Product{
			{ID: "p1", Name: "Runner", CategoryID: "shoes", Price: 89.5, Currency: "EUR"},
			{ID: "p2", Name: "Tote", CategoryID: "bags", Price: 40, Currency: "EUR"},
		},
	})
}

func newRenderers(t *testing.T, options ...html.Option) *html.Renderers {
	t.Helper()
	options = append([]html.Option{html.WithClock(func() time.Time { return fixedNow })}, options...)
	r, err := html.New(options...)
	if err != nil {
		t.Fatalf("new renderers: %v", err)
	}
	return r
}

func descriptor(tag, data string) layout.WidgetDescriptor {
	return layout.WidgetDescriptor{ID: "w1", Type: tag, Data: json.RawMessage(data)}
}

func renderOnce(t *testing.T, r *html.Renderers, desc layout.WidgetDescriptor) (widgets.Output, error) {
	t.Helper()
	renderer := r.Renderer(desc.Type)
	if renderer == nil {
		t.Fatalf("no renderer for %s", desc.Type)
	}
	return renderer.Render(context.Background(), widgets.Context{
		Key:        desc.Key(0),
		Descriptor: desc,
		Update:     func(widgets.Output) {},
	})
}

func TestNewRegistry_RegistersBuiltins(t *testing.T) {
	registry, err := html.NewRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if diff := cmp.Diff(html.Types(), registry.Names()); diff != "" {
		t.Fatalf("registered types mismatch (-want +got):\n%s", diff)
	}
}

func TestSpacer(t *testing.T) {
	r := newRenderers(t)

	out, err := renderOnce(t, r, descriptor(layout.TypeSpacer, `{"height":16}`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Height != 16 || !strings.Contains(out.HTML, "height:16px") {
		t.Fatalf("unexpected spacer output: %+v", out)
	}

	for _, data := range []string{`{}`, `{"height":-4}`, `{"height":"16"}`, `{"height":null}`} {
		out, err := renderOnce(t, r, descriptor(layout.TypeSpacer, data))
		if err != nil {
			t.Fatalf("render %s: %v", data, err)
		}
		if !out.Empty() {
			t.Fatalf("expected empty spacer for %s, got %+v", data, out)
		}
	}
}

func TestDivider(t *testing.T) {
	r := newRenderers(t)
	out, err := renderOnce(t, r, descriptor(layout.TypeDivider, `{"thickness":1,"color":"#e5e7eb"}`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.HTML, "border-top-width:1px") || !strings.Contains(out.HTML, "border-color:#e5e7eb") {
		t.Fatalf("unexpected divider markup: %s", out.HTML)
	}

	out, err = renderOnce(t, r, descriptor(layout.TypeDivider, `{"thickness":"2","color":"#e5e7eb"}`))
	if err != nil {
		t.Fatalf("render divider with text thickness: %v", err)
	}
	if !out.Empty() {
		t.Fatalf("expected empty divider, got %+v", out)
	}
}

func TestBannerCarousel(t *testing.T) {
	r := newRenderers(t)

	empty, err := renderOnce(t, r, descriptor(layout.TypeBannerCarousel, `{"banners":[]}`))
	if err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if empty.HTML != "" {
		t.Fatalf("expected no markup for empty carousel, got %q", empty.HTML)
	}

	out, err := renderOnce(t, r, descriptor(layout.TypeBannerCarousel, `{"banners":[
		{"id":"b1","imageUrl":"https://cdn.example.com/b1.jpg","title":"Spring","link":"javascript:alert(1)"}
	]}`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.HTML, `src="https://cdn.example.com/b1.jpg"`) {
		t.Fatalf("missing banner image: %s", out.HTML)
	}
	if strings.Contains(out.HTML, "javascript") {
		t.Fatalf("unsafe link kept: %s", out.HTML)
	}
	if !strings.Contains(out.HTML, `alt="Spring"`) {
		t.Fatalf("expected alt text to default to title: %s", out.HTML)
	}
}

func TestOfferBanner_InvalidPayload(t *testing.T) {
	r := newRenderers(t)
	_, err := renderOnce(t, r, descriptor(layout.TypeOfferBanner, `{"subtitle":"no title"}`))
	if !errors.Is(err, payload.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestCustom_Sanitises(t *testing.T) {
	r := newRenderers(t)
	out, err := renderOnce(t, r, descriptor(layout.TypeCustom, `{"html":"<p class=\"lead\">Hi</p><script>alert(1)</script>"}`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.HTML, `<p class="lead">Hi</p>`) {
		t.Fatalf("expected paragraph to survive: %s", out.HTML)
	}
	if strings.Contains(out.HTML, "script") {
		t.Fatalf("script not stripped: %s", out.HTML)
	}
}

func TestCountdown(t *testing.T) {
	r := newRenderers(t)

	endsAt := fixedNow.Add(time.Hour + 2*time.Minute + 5*time.Second).Format(time.RFC3339)
	out, err := renderOnce(t, r, descriptor(layout.TypeCountdownTimer, `{"title":"Flash sale","endsAt":"`+endsAt+`"}`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.HTML, "01:02:05") {
		t.Fatalf("expected remaining clock in markup: %s", out.HTML)
	}
	if diff := cmp.Diff(map[string]any{"remainingSeconds": int64(3725), "expired": false}, out.Props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}

	past := fixedNow.Add(-time.Minute).Format(time.RFC3339)
	expired, err := renderOnce(t, r, descriptor(layout.TypeCountdownTimer, `{"endsAt":"`+past+`"}`))
	if err != nil {
		t.Fatalf("render expired: %v", err)
	}
	if !strings.Contains(expired.HTML, "Offer ended") {
		t.Fatalf("expected expired text: %s", expired.HTML)
	}

	if _, err := renderOnce(t, r, descriptor(layout.TypeCountdownTimer, `{"endsAt":"tomorrow"}`)); err == nil {
		t.Fatalf("expected error for unparsable endsAt")
	}
}

func TestStyleHintsAreFiltered(t *testing.T) {
	r := newRenderers(t)
	desc := descriptor(layout.TypeCustom, `{"html":"<p>x</p>"}`)
	desc.Style = map[string]string{
		"background": "#fff",
		"onclick":    "steal()",
		"color":      "red;}body{display:none",
	}
	out, err := renderOnce(t, r, desc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.HTML, `style="background:#fff"`) {
		t.Fatalf("expected filtered style attribute: %s", out.HTML)
	}
}

type failingCatalog struct{}

func (failingCatalog) Products(context.Context, catalog.Query) ([]catalog.Product, error) {
	return nil, errors.New("catalog offline")
}

func (failingCatalog) Categories(context.Context, catalog.Query) ([]catalog.Category, error) {
	return nil, errors.New("catalog offline")
}

func renderDeferred(t *testing.T, r *html.Renderers, desc layout.WidgetDescriptor) (widgets.Output, widgets.Output) {
	t.Helper()
	updates := make(chan widgets.Output, 1)
	out, err := r.Renderer(desc.Type).Render(context.Background(), widgets.Context{
		Key:        desc.Key(0),
		Descriptor: desc,
		Update:     func(o widgets.Output) { updates <- o },
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	select {
	case final := <-updates:
		return out, final
	case <-time.After(2 * time.Second):
		t.Fatalf("no update published")
	}
	return out, widgets.Output{}
}

func TestProductRail_FetchesFromCatalog(t *testing.T) {
	r := newRenderers(t, html.WithCatalog(testCatalog()))

	initial, final := renderDeferred(t, r, descriptor(layout.TypeProductRail, `{"title":"Shoes","categoryId":"shoes"}`))
	if initial.Fetch != fetch.StateLoading || !strings.Contains(initial.HTML, "sdui-placeholder") {
		t.Fatalf("expected loading placeholder, got %+v", initial)
	}
	if final.Fetch != fetch.StateReady {
		t.Fatalf("expected ready update, got %s", final.Fetch)
	}
	if !strings.Contains(final.HTML, "Runner") || !strings.Contains(final.HTML, "€89.50") {
		t.Fatalf("unexpected rail markup: %s", final.HTML)
	}
	if strings.Contains(final.HTML, "Tote") {
		t.Fatalf("category filter ignored: %s", final.HTML)
	}
}

func TestCategoryGrid_EmptyPayloadListsAll(t *testing.T) {
	r := newRenderers(t, html.WithCatalog(testCatalog()))

	_, final := renderDeferred(t, r, descriptor(layout.TypeCategoryGrid, `{}`))
	if !strings.Contains(final.HTML, "Shoes") || !strings.Contains(final.HTML, "Bags") {
		t.Fatalf("expected every category: %s", final.HTML)
	}
}

func TestProductGrid_FailedFetchCollapses(t *testing.T) {
	r := newRenderers(t, html.WithCatalog(failingCatalog{}))

	_, final := renderDeferred(t, r, descriptor(layout.TypeProductGrid, `{"title":"All"}`))
	if final.Fetch != fetch.StateFailed {
		t.Fatalf("expected failed fetch, got %s", final.Fetch)
	}
	if !final.Empty() {
		t.Fatalf("failed widget should render nothing, got %+v", final)
	}
}

func TestCatalogWidgetWithoutProvider(t *testing.T) {
	r := newRenderers(t)
	out, err := renderOnce(t, r, descriptor(layout.TypeProductGrid, `{}`))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Fetch != fetch.StateFailed || !out.Empty() {
		t.Fatalf("expected collapsed output, got %+v", out)
	}
}
