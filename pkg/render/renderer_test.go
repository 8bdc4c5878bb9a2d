package render_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-sdui/pkg/fetch"
	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/render"
	"github.com/goliatone/go-sdui/pkg/resolver"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

func echoRenderer() widgets.Renderer {
	return widgets.RendererFunc(func(_ context.Context, w widgets.Context) (widgets.Output, error) {
		return widgets.Output{HTML: fmt.Sprintf("<section>%s</section>", w.Key)}, nil
	})
}

func panicRenderer() widgets.Renderer {
	return widgets.RendererFunc(func(context.Context, widgets.Context) (widgets.Output, error) {
		panic("nil payload")
	})
}

func resolvePlan(t *testing.T, registry *widgets.Registry, descriptors ...layout.WidgetDescriptor) resolver.RenderPlan {
	t.Helper()
	r, err := resolver.New(registry)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	result := r.Normalise(&layout.PageLayout{PageType: "home", Widgets: descriptors})
	if result.Degraded {
		t.Fatalf("unexpected degraded plan: %v", result.Cause)
	}
	return result.Plan
}

func descriptor(id, tag, data string) layout.WidgetDescriptor {
	return layout.WidgetDescriptor{ID: id, Type: tag, Data: json.RawMessage(data)}
}

func unitStates(units []render.RenderedUnit) []render.State {
	out := make([]render.State, len(units))
	for idx, unit := range units {
		out[idx] = unit.State
	}
	return out
}

func TestRender_SingleWidgetIsolation(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.MustRegister("ok", echoRenderer())
	registry.MustRegister("boom", panicRenderer())
	registry.MustRegister("err", widgets.RendererFunc(func(context.Context, widgets.Context) (widgets.Output, error) {
		return widgets.Output{HTML: "partial"}, errors.New("bad data")
	}))

	plan := resolvePlan(t, registry,
		descriptor("w1", "ok", `{}`),
		descriptor("w2", "ok", `{}`),
		descriptor("w3", "boom", `{}`),
		descriptor("w4", "err", `{}`),
		descriptor("w5", "ok", `{}`),
	)

	units := render.New().Render(context.Background(), plan)
	if len(units) != 5 {
		t.Fatalf("expected 5 units, got %d", len(units))
	}

	want := []render.State{render.StateResolved, render.StateResolved, render.StateFailed, render.StateFailed, render.StateResolved}
	if diff := cmp.Diff(want, unitStates(units)); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
	for _, idx := range []int{2, 3} {
		if !units[idx].Output.Empty() || units[idx].Visible() {
			t.Fatalf("failed unit %d must render empty, got %+v", idx, units[idx].Output)
		}
		if !errors.Is(units[idx].Err, render.ErrWidgetRenderFailed) {
			t.Fatalf("unit %d error not classified: %v", idx, units[idx].Err)
		}
	}
	for _, idx := range []int{0, 1, 4} {
		wantHTML := fmt.Sprintf("<section>w%d</section>", idx+1)
		if units[idx].Output.HTML != wantHTML {
			t.Fatalf("unit %d affected by sibling failure: %q", idx, units[idx].Output.HTML)
		}
	}
}

func TestRender_OrderPreservation(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.MustRegister("ok", echoRenderer())
	registry.MustRegister("boom", panicRenderer())

	tags := []string{"ok", "missing", "boom", "ok", "missing", "boom", "ok"}
	var descriptors []layout.WidgetDescriptor
	for idx, tag := range tags {
		descriptors = append(descriptors, descriptor(fmt.Sprintf("k%d", idx), tag, `{}`))
	}
	units := render.New().Render(context.Background(), resolvePlan(t, registry, descriptors...))

	var keys, types []string
	for idx, unit := range units {
		if unit.Index != idx {
			t.Fatalf("unit index %d at position %d", unit.Index, idx)
		}
		keys = append(keys, unit.Key)
		types = append(types, unit.Type)
	}
	if diff := cmp.Diff([]string{"k0", "k1", "k2", "k3", "k4", "k5", "k6"}, keys); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tags, types); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ExampleScenario(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.MustRegister(layout.TypeBannerCarousel, echoRenderer())
	registry.MustRegister(layout.TypeSpacer, widgets.RendererFunc(func(_ context.Context, w widgets.Context) (widgets.Output, error) {
		var data struct {
			Height float64 `json:"height"`
		}
		if err := w.Descriptor.DecodeData(&data); err != nil {
			return widgets.Output{}, err
		}
		return widgets.Output{Height: data.Height}, nil
	}))

	plan := resolvePlan(t, registry,
		descriptor("", layout.TypeBannerCarousel, `{"banners":[]}`),
		descriptor("", "unknown_widget_v2", `{}`),
		descriptor("", layout.TypeSpacer, `{"height":16}`),
	)
	units := render.New().Render(context.Background(), plan)

	want := []render.State{render.StateResolved, render.StateUnsupported, render.StateResolved}
	if diff := cmp.Diff(want, unitStates(units)); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
	if !units[1].Output.Empty() {
		t.Fatalf("unsupported unit must be empty: %+v", units[1].Output)
	}
	if units[2].Output.Height != 16 {
		t.Fatalf("spacer height: want 16, got %v", units[2].Output.Height)
	}
}

func TestRender_Idempotent(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.MustRegister("ok", echoRenderer())
	registry.MustRegister("boom", panicRenderer())

	plan := resolvePlan(t, registry,
		descriptor("a", "ok", `{}`),
		descriptor("b", "boom", `{}`),
		descriptor("c", "nope", `{}`),
	)
	renderer := render.New()
	first := renderer.Render(context.Background(), plan)
	second := renderer.Render(context.Background(), plan)

	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(render.RenderedUnit{}, "Err")); diff != "" {
		t.Fatalf("render not idempotent (-first +second):\n%s", diff)
	}
}

func TestRenderWithUpdates_SecondaryFetchUpdatesInPlace(t *testing.T) {
	release := make(chan struct{})
	registry := widgets.NewRegistry()
	registry.MustRegister("ok", echoRenderer())
	registry.MustRegister(layout.TypeProductGrid, widgets.RendererFunc(func(ctx context.Context, w widgets.Context) (widgets.Output, error) {
		task := fetch.NewTask[string]()
		task.OnChange(func(s fetch.Snapshot[string]) {
			if s.State.Terminal() {
				w.Update(widgets.Output{HTML: s.Value, Fetch: s.State})
			}
		})
		if err := task.Start(ctx, func(context.Context) (string, error) {
			<-release
			return "<ul>products</ul>", nil
		}); err != nil {
			return widgets.Output{}, err
		}
		return widgets.Output{Fetch: fetch.StateLoading}, nil
	}))

	plan := resolvePlan(t, registry,
		descriptor("grid", layout.TypeProductGrid, `{}`),
		descriptor("after", "ok", `{}`),
	)

	updates := make(chan render.UnitUpdate, 1)
	pass := render.New().RenderWithUpdates(context.Background(), plan, func(u render.UnitUpdate) {
		updates <- u
	})

	if pass.Units[0].Output.Fetch != fetch.StateLoading {
		t.Fatalf("expected loading sub-state, got %q", pass.Units[0].Output.Fetch)
	}
	if pass.Units[1].Output.HTML != "<section>after</section>" {
		t.Fatalf("sibling blocked by secondary fetch: %+v", pass.Units[1])
	}

	close(release)
	select {
	case update := <-updates:
		if update.PassID != pass.ID || update.Unit.Key != "grid" || update.Unit.Index != 0 {
			t.Fatalf("unexpected update target: %+v", update)
		}
		if update.Unit.Output.HTML != "<ul>products</ul>" || update.Unit.Output.Fetch != fetch.StateReady {
			t.Fatalf("unexpected update output: %+v", update.Unit.Output)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no update delivered")
	}
}

func TestRenderWithUpdates_FailedWidgetNeverUpdates(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.MustRegister("flaky", widgets.RendererFunc(func(_ context.Context, w widgets.Context) (widgets.Output, error) {
		w.Update(widgets.Output{HTML: "late"})
		return widgets.Output{}, errors.New("decode failed")
	}))

	plan := resolvePlan(t, registry, descriptor("x", "flaky", `{}`))
	updates := make(chan render.UnitUpdate, 1)
	pass := render.New().RenderWithUpdates(context.Background(), plan, func(u render.UnitUpdate) {
		updates <- u
	})
	if pass.Units[0].State != render.StateFailed {
		t.Fatalf("expected failed unit")
	}
	select {
	case update := <-updates:
		t.Fatalf("unexpected update for failed unit: %+v", update)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRenderWithUpdates_EarlyUpdatesAreFlushedAfterPass(t *testing.T) {
	registry := widgets.NewRegistry()
	registry.MustRegister("sync", widgets.RendererFunc(func(_ context.Context, w widgets.Context) (widgets.Output, error) {
		w.Update(widgets.Output{HTML: "fresh", Fetch: fetch.StateReady})
		return widgets.Output{Fetch: fetch.StateLoading}, nil
	}))

	plan := resolvePlan(t, registry, descriptor("x", "sync", `{}`))
	updates := make(chan render.UnitUpdate, 1)
	pass := render.New().RenderWithUpdates(context.Background(), plan, func(u render.UnitUpdate) {
		updates <- u
	})
	if pass.Units[0].Output.Fetch != fetch.StateLoading {
		t.Fatalf("initial unit must not depend on fetch timing: %+v", pass.Units[0].Output)
	}
	select {
	case update := <-updates:
		if update.Unit.Output.HTML != "fresh" {
			t.Fatalf("unexpected flushed update: %+v", update.Unit.Output)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("queued update never flushed")
	}
}

func TestRenderWithUpdates_DeliversUpdatesInPublishOrder(t *testing.T) {
	for i := 0; i < 50; i++ {
		var later func(widgets.Output)
		registry := widgets.NewRegistry()
		registry.MustRegister("twice", widgets.RendererFunc(func(_ context.Context, w widgets.Context) (widgets.Output, error) {
			later = w.Update
			w.Update(widgets.Output{HTML: "first"})
			return widgets.Output{Fetch: fetch.StateLoading}, nil
		}))

		plan := resolvePlan(t, registry, descriptor("x", "twice", `{}`))
		updates := make(chan string, 2)
		render.New().RenderWithUpdates(context.Background(), plan, func(u render.UnitUpdate) {
			updates <- u.Unit.Output.HTML
		})
		later(widgets.Output{HTML: "second"})

		var got []string
		for len(got) < 2 {
			select {
			case html := <-updates:
				got = append(got, html)
			case <-time.After(2 * time.Second):
				t.Fatalf("pass %d: missing updates, got %v", i, got)
			}
		}
		if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
			t.Fatalf("pass %d: update order mismatch (-want +got):\n%s", i, diff)
		}
	}
}
