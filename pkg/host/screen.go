package host

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/render"
	"github.com/goliatone/go-sdui/pkg/resolver"
	"github.com/goliatone/go-sdui/pkg/telemetry"
)

var (
	// ErrStaleResponse is returned by Load when a newer request superseded it.
	ErrStaleResponse = errors.New("host: stale layout response discarded")
	// ErrClosed is returned once the screen has been closed.
	ErrClosed = errors.New("host: screen closed")
)

// RequestLayout is the single capability a host supplies: one layout request.
type RequestLayout func(ctx context.Context) (*layout.PageLayout, error)

// Option customises a Screen.
type Option func(*Screen)

// WithLogger injects a zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Screen) {
		s.logger = logger
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(recorder telemetry.Recorder) Option {
	return func(s *Screen) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithPageType labels logs and metrics for the screen.
func WithPageType(pageType string) Option {
	return func(s *Screen) {
		s.pageType = pageType
	}
}

// Screen drives one page through resolve and render passes.
type Screen struct {
	id       string
	pageType string
	request  RequestLayout
	resolver *resolver.Resolver
	renderer *render.Renderer
	logger   zerolog.Logger
	recorder telemetry.Recorder

	base       context.Context
	cancelBase context.CancelFunc

	mu              sync.Mutex
	generation      uint64
	cancelFetch     context.CancelFunc
	cancelPass      context.CancelFunc
	state           State
	currentInterval time.Duration
	rendering       uint64
	held            []render.UnitUpdate
	closed          bool
	nextSub         int
	subscribers     map[int]func(State)
}

// NewScreen wires a screen to its layout capability, resolver, and renderer.
func NewScreen(request RequestLayout, res *resolver.Resolver, renderer *render.Renderer, options ...Option) (*Screen, error) {
	if request == nil {
		return nil, errors.New("host: request layout capability is required")
	}
	if res == nil {
		return nil, errors.New("host: resolver is required")
	}
	if renderer == nil {
		renderer = render.New()
	}
	base, cancel := context.WithCancel(context.Background())
	s := &Screen{
		id:          uuid.NewString(),
		request:     request,
		resolver:    res,
		renderer:    renderer,
		logger:      zerolog.Nop(),
		recorder:    telemetry.NopRecorder{},
		base:        base,
		cancelBase:  cancel,
		state:       State{Phase: PhaseLoading},
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.logger = s.logger.With().Str("screen_id", s.id).Str("page_type", s.pageType).Logger()
	return s, nil
}

// ID returns the screen identifier used in logs.
func (s *Screen) ID() string {
	return s.id
}

// State returns the current snapshot.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// IsLoading reports whether the first layout is still pending.
func (s *Screen) IsLoading() bool {
	return s.State().IsLoading()
}

// Load requests a layout, resolves and renders it, and publishes the result
// unless a newer Load started in the meantime. Superseded calls return
// ErrStaleResponse and leave the newer state untouched.
func (s *Screen) Load(ctx context.Context) (State, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, ErrClosed
	}
	s.generation++
	generation := s.generation
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	fetchCtx, cancelFetch := context.WithCancel(ctx)
	s.cancelFetch = cancelFetch
	s.mu.Unlock()
	defer cancelFetch()

	result := s.resolver.Resolve(fetchCtx, resolver.FetchFunc(s.request))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return State{}, ErrClosed
	}
	if generation != s.generation {
		s.mu.Unlock()
		s.recorder.StaleResponseDiscarded(s.pageType)
		s.logger.Debug().Uint64("generation", generation).Msg("stale layout response discarded")
		return State{}, ErrStaleResponse
	}

	if s.cancelPass != nil {
		s.cancelPass()
	}
	passCtx, cancelPass := context.WithCancel(s.base)
	s.cancelPass = cancelPass
	s.rendering = generation
	s.held = nil
	s.mu.Unlock()

	pass := s.renderer.RenderWithUpdates(passCtx, result.Plan, func(update render.UnitUpdate) {
		s.applyUpdate(generation, update)
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancelPass()
		return State{}, ErrClosed
	}
	if generation != s.generation {
		if s.rendering == generation {
			s.rendering = 0
			s.held = nil
		}
		s.mu.Unlock()
		cancelPass()
		s.recorder.StaleResponseDiscarded(s.pageType)
		s.logger.Debug().Uint64("generation", generation).Msg("stale render pass discarded")
		return State{}, ErrStaleResponse
	}

	units := pass.Units
	for _, update := range s.held {
		if next := replaceUnit(units, update); next != nil {
			units = next
		}
	}
	s.held = nil
	s.rendering = 0

	phase := PhaseReady
	if result.Degraded {
		phase = PhaseDegraded
	}
	s.state = State{
		Phase:       phase,
		Units:       units,
		PassID:      pass.ID,
		Generation:  generation,
		PageType:    result.Plan.PageType,
		Cause:       result.Cause,
		Diagnostics: result.Diagnostics,
	}
	s.currentInterval = result.Plan.RefreshInterval
	published := s.state.clone()
	subscribers := s.subscriberList()
	s.mu.Unlock()

	s.logger.Debug().
		Str("phase", string(phase)).
		Int("units", len(published.Units)).
		Uint64("generation", generation).
		Msg("layout accepted")
	notify(subscribers, published)
	return published, nil
}

// Refresh is Load under the name hosts use for pull-to-refresh.
func (s *Screen) Refresh(ctx context.Context) (State, error) {
	return s.Load(ctx)
}

// AutoRefresh reloads the page every RefreshInterval declared by the accepted
// layout until ctx is done or the screen closes. A zero interval is polled
// again after idle.
func (s *Screen) AutoRefresh(ctx context.Context, idle time.Duration) error {
	if idle <= 0 {
		idle = time.Minute
	}
	for {
		wait := idle
		if interval := s.refreshInterval(); interval > 0 {
			wait = interval
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.base.Done():
			timer.Stop()
			return ErrClosed
		case <-timer.C:
		}
		if s.refreshInterval() <= 0 {
			continue
		}
		if _, err := s.Load(ctx); errors.Is(err, ErrClosed) {
			return err
		}
	}
}

func (s *Screen) refreshInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentInterval
}

// Subscribe registers fn for every published state. The returned function
// removes the subscription.
func (s *Screen) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close discards every in-flight request and stops secondary fetches.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	if s.cancelPass != nil {
		s.cancelPass()
	}
	s.cancelBase()
	s.subscribers = make(map[int]func(State))
}

// applyUpdate replaces one unit of the published pass. Updates that arrive
// while their pass is still being rendered are held and applied when it is
// published.
func (s *Screen) applyUpdate(generation uint64, update render.UnitUpdate) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if generation == s.rendering {
		s.held = append(s.held, update)
		s.mu.Unlock()
		return
	}
	if update.PassID != s.state.PassID {
		s.mu.Unlock()
		return
	}
	units := replaceUnit(s.state.Units, update)
	if units == nil {
		s.mu.Unlock()
		return
	}
	s.state.Units = units
	published := s.state.clone()
	subscribers := s.subscriberList()
	s.mu.Unlock()

	notify(subscribers, published)
}

// replaceUnit returns a copy of units with update applied, or nil when the
// update does not address a unit of units.
func replaceUnit(units []render.RenderedUnit, update render.UnitUpdate) []render.RenderedUnit {
	idx := update.Unit.Index
	if idx < 0 || idx >= len(units) || units[idx].Key != update.Unit.Key {
		return nil
	}
	out := append([]render.RenderedUnit(nil), units...)
	out[idx] = update.Unit
	return out
}

func (s *Screen) subscriberList() []func(State) {
	out := make([]func(State), 0, len(s.subscribers))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subscribers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(subscribers []func(State), state State) {
	for _, fn := range subscribers {
		fn(state.clone())
	}
}
