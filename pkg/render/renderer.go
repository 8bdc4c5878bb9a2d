package render

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sdui/pkg/resolver"
	"github.com/goliatone/go-sdui/pkg/telemetry"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

// Option customises the renderer.
type Option func(*Renderer)

// WithLogger injects a zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(recorder telemetry.Recorder) Option {
	return func(r *Renderer) {
		if recorder != nil {
			r.recorder = recorder
		}
	}
}

// Renderer materialises render plans. It keeps no state between passes.
type Renderer struct {
	logger   zerolog.Logger
	recorder telemetry.Recorder
}

// New constructs a Renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{
		logger:   zerolog.Nop(),
		recorder: telemetry.NopRecorder{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Render produces exactly one unit per plan entry in plan order. Updates from
// secondary fetches are discarded; use RenderWithUpdates to observe them.
func (r *Renderer) Render(ctx context.Context, plan resolver.RenderPlan) []RenderedUnit {
	return r.RenderWithUpdates(ctx, plan, nil).Units
}

// RenderWithUpdates renders plan and forwards later in-place updates of
// individual units to onUpdate. The returned units never wait on secondary
// fetches.
func (r *Renderer) RenderWithUpdates(ctx context.Context, plan resolver.RenderPlan, onUpdate UpdateFunc) Pass {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	pass := Pass{
		ID:    uuid.NewString(),
		Units: make([]RenderedUnit, len(plan.Entries)),
	}
	logger := r.logger.With().Str("pass_id", pass.ID).Str("page_type", plan.PageType).Logger()
	updates := newGate(onUpdate)
	defer updates.release()

	for idx, entry := range plan.Entries {
		pass.Units[idx] = r.renderEntry(ctx, logger, pass.ID, idx, entry, updates)
		r.recorder.WidgetRendered(entry.Descriptor.Type, string(pass.Units[idx].State))
	}

	r.recorder.RenderDuration(plan.PageType, time.Since(started))
	logger.Debug().Int("units", len(pass.Units)).Dur("elapsed", time.Since(started)).Msg("render pass complete")
	return pass
}

func (r *Renderer) renderEntry(ctx context.Context, logger zerolog.Logger, passID string, idx int, entry resolver.PlanEntry, updates *gate) RenderedUnit {
	unit := RenderedUnit{
		Key:   entry.Key,
		Index: idx,
		Type:  entry.Descriptor.Type,
		State: StateResolved,
	}
	if !entry.Supported || entry.Renderer == nil {
		unit.State = StateUnsupported
		return unit
	}

	base := unit
	update := func(out widgets.Output) {
		updated := base
		updated.Output = out
		updates.publish(UnitUpdate{PassID: passID, Unit: updated})
	}

	out, err := invoke(ctx, entry.Renderer, widgets.Context{
		Key:        entry.Key,
		Index:      idx,
		Descriptor: entry.Descriptor.Clone(),
		Update:     update,
	})
	if err != nil {
		logger.Warn().Err(err).Str("widget_key", entry.Key).Str("widget_type", entry.Descriptor.Type).Msg("widget render failed")
		updates.fail(idx)
		unit.State = StateFailed
		unit.Err = err
		return unit
	}

	unit.Output = out
	return unit
}

func invoke(ctx context.Context, renderer widgets.Renderer, widget widgets.Context) (out widgets.Output, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			out = widgets.Output{}
			err = fmt.Errorf("%w: panic: %v\n%s", ErrWidgetRenderFailed, recovered, debug.Stack())
		}
	}()
	out, err = renderer.Render(ctx, widget)
	if err != nil {
		return widgets.Output{}, fmt.Errorf("%w: %w", ErrWidgetRenderFailed, err)
	}
	return out, nil
}
