package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/telemetry"
	"github.com/goliatone/go-sdui/pkg/widgets"
)

// FetchFunc performs one layout request. A nil layout with a nil error counts
// as a malformed response.
type FetchFunc func(ctx context.Context) (*layout.PageLayout, error)

// Resolver validates fetched layouts against a widget registry and builds
// render plans. It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	registry *widgets.Registry
	timeout  time.Duration
	fallback *layout.PageLayout
	sink     DiagnosticSink
	logger   zerolog.Logger
	recorder telemetry.Recorder
	validate *validator.Validate
}

// New constructs a Resolver bound to registry. It fails when the configured
// default layout would produce an empty plan.
func New(registry *widgets.Registry, options ...Option) (*Resolver, error) {
	if registry == nil {
		return nil, errors.New("resolver: widget registry is required")
	}
	r := &Resolver{
		registry: registry,
		timeout:  DefaultTimeout,
		fallback: DefaultLayout(),
		logger:   zerolog.Nop(),
		recorder: telemetry.NopRecorder{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	plan, _ := r.normalise(r.fallback)
	if plan.Len() == 0 {
		return nil, errors.New("resolver: default layout has no valid widgets")
	}
	return r, nil
}

// Resolve runs fetch and normalises its result. It always returns a usable
// plan: when the fetch fails, times out, or returns a layout without a widgets
// sequence the default layout is used and the result is marked degraded.
func (r *Resolver) Resolve(ctx context.Context, fetch FetchFunc) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if fetch == nil {
		return r.degrade(fmt.Errorf("%w: fetch function is nil", ErrLayoutFetchFailed))
	}

	page, err := r.fetch(ctx, fetch)
	if err != nil {
		return r.degrade(fmt.Errorf("%w: %w", ErrLayoutFetchFailed, err))
	}
	if !page.HasWidgets() {
		return r.degrade(fmt.Errorf("%w: missing widgets sequence", ErrLayoutShapeInvalid))
	}
	return r.Normalise(page)
}

// Normalise validates an already available layout. A layout without a widgets
// sequence degrades exactly as in Resolve.
func (r *Resolver) Normalise(page *layout.PageLayout) Result {
	if !page.HasWidgets() {
		return r.degrade(fmt.Errorf("%w: missing widgets sequence", ErrLayoutShapeInvalid))
	}
	plan, diagnostics := r.normalise(page)
	for _, diag := range diagnostics {
		r.report(diag)
	}
	r.recorder.DescriptorsDropped(plan.PageType, len(diagnostics))
	r.recorder.LayoutResolved(plan.PageType, "ok")
	r.logger.Debug().
		Str("page_type", plan.PageType).
		Int("widgets", plan.Len()).
		Int("dropped", len(diagnostics)).
		Msg("layout resolved")

	return Result{Plan: plan, Diagnostics: diagnostics}
}

func (r *Resolver) fetch(ctx context.Context, fetch FetchFunc) (*layout.PageLayout, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		page *layout.PageLayout
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", recovered)}
			}
		}()
		page, err := fetch(fetchCtx)
		done <- outcome{page: page, err: err}
	}()

	select {
	case res := <-done:
		return res.page, res.err
	case <-fetchCtx.Done():
		return nil, fetchCtx.Err()
	}
}

func (r *Resolver) degrade(cause error) Result {
	kind := KindLayoutFetchFailed
	if errors.Is(cause, ErrLayoutShapeInvalid) {
		kind = KindLayoutShapeInvalid
	}
	layoutDiag := Diagnostic{Kind: kind, Index: -1, Reason: cause.Error(), Err: cause}
	r.report(layoutDiag)

	plan, dropped := r.normalise(r.fallback)
	plan.Fallback = true
	for _, diag := range dropped {
		r.report(diag)
	}

	r.recorder.LayoutResolved(plan.PageType, "degraded")
	r.logger.Warn().Err(cause).Int("widgets", plan.Len()).Msg("layout degraded to default")

	return Result{
		Plan:        plan,
		Degraded:    true,
		Cause:       cause,
		Diagnostics: append([]Diagnostic{layoutDiag}, dropped...),
	}
}

func (r *Resolver) normalise(page *layout.PageLayout) (RenderPlan, []Diagnostic) {
	plan := RenderPlan{}
	if page == nil {
		return plan, nil
	}
	plan.PageType = page.PageType
	plan.Version = page.Version
	plan.RefreshInterval = page.RefreshInterval
	plan.Entries = make([]PlanEntry, 0, len(page.Widgets))

	// Explicit ids are unique among themselves. Positional keys never cause a
	// drop; they are renamed when an id already claims them.
	var diagnostics []Diagnostic
	ids := make(map[string]struct{}, len(page.Widgets))
	kept := make([]int, 0, len(page.Widgets))
	for idx, descriptor := range page.Widgets {
		if reason := r.check(descriptor); reason != "" {
			diagnostics = append(diagnostics, invalid(idx, descriptor, reason))
			continue
		}
		if id := strings.TrimSpace(descriptor.ID); id != "" {
			if _, exists := ids[id]; exists {
				diagnostics = append(diagnostics, invalid(idx, descriptor, fmt.Sprintf("duplicate id %q", id)))
				continue
			}
			ids[id] = struct{}{}
		}
		kept = append(kept, idx)
	}

	keys := make(map[string]struct{}, len(kept))
	for id := range ids {
		keys[id] = struct{}{}
	}
	for _, idx := range kept {
		descriptor := page.Widgets[idx]
		key := descriptor.Key(idx)
		if strings.TrimSpace(descriptor.ID) == "" {
			base := key
			for n := 1; ; n++ {
				if _, taken := keys[key]; !taken {
					break
				}
				key = fmt.Sprintf("%s-%d", base, n)
			}
			keys[key] = struct{}{}
		}

		renderer, supported := r.registry.Resolve(descriptor.Type)
		if !supported {
			renderer = r.registry.Unsupported()
		}
		plan.Entries = append(plan.Entries, PlanEntry{
			Key:         key,
			SourceIndex: idx,
			Descriptor:  descriptor.Clone(),
			Renderer:    renderer,
			Supported:   supported,
		})
	}
	return plan, diagnostics
}

func (r *Resolver) check(descriptor layout.WidgetDescriptor) string {
	if err := r.validate.Struct(descriptor); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			names := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				names = append(names, strings.ToLower(fe.Field()))
			}
			return "missing " + strings.Join(names, ", ")
		}
		return err.Error()
	}
	if strings.TrimSpace(descriptor.Type) == "" {
		return "missing type"
	}
	if !descriptor.HasData() {
		return "missing data"
	}
	return ""
}

func invalid(idx int, descriptor layout.WidgetDescriptor, reason string) Diagnostic {
	return Diagnostic{
		Kind:   KindWidgetDescriptorInvalid,
		Index:  idx,
		ID:     descriptor.ID,
		Type:   descriptor.Type,
		Reason: reason,
		Err:    fmt.Errorf("%w: %s", ErrWidgetDescriptorInvalid, reason),
	}
}

func (r *Resolver) report(diag Diagnostic) {
	if diag.Kind == KindWidgetDescriptorInvalid {
		r.logger.Debug().
			Int("index", diag.Index).
			Str("type", diag.Type).
			Str("id", diag.ID).
			Str("reason", diag.Reason).
			Msg("widget descriptor dropped")
	}
	if r.sink != nil {
		r.sink(diag)
	}
}
