// Package server exposes an Engine over HTTP for previewing layouts. Each page
// is backed by one long lived host.Screen that is loaded on first request and
// refreshed on demand or when its layout file changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	sdui "github.com/goliatone/go-sdui"
	"github.com/goliatone/go-sdui/pkg/fetch"
	"github.com/goliatone/go-sdui/pkg/host"
	"github.com/goliatone/go-sdui/pkg/provider"
	"github.com/goliatone/go-sdui/pkg/renderers/html"
	"github.com/goliatone/go-sdui/pkg/resolver"
	"github.com/goliatone/go-sdui/pkg/telemetry"
)

// Option customises a Server.
type Option func(*Server)

// WithWatchDir enables hot reload of layout files under dir.
func WithWatchDir(dir string) Option {
	return func(s *Server) {
		s.watchDir = dir
	}
}

// WithDebounce sets how long the watcher waits for writes to settle before
// refreshing a page. Defaults to DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// DefaultDebounce coalesces editor write bursts.
const DefaultDebounce = 150 * time.Millisecond

// Server serves pages rendered by an Engine.
type Server struct {
	engine   *sdui.Engine
	logger   zerolog.Logger
	router   *mux.Router
	watchDir string
	debounce time.Duration

	mu      sync.Mutex
	screens map[string]*host.Screen
	watcher *watcher
	closed  bool
}

// New builds the router for engine.
func New(engine *sdui.Engine, options ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("server: engine is required")
	}
	s := &Server{
		engine:   engine,
		logger:   engine.Logger().Component("server").Zerolog(),
		debounce: DefaultDebounce,
		screens:  make(map[string]*host.Screen),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.requestLogger)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", engine.MetricsHandler()).Methods(http.MethodGet)
	r.HandleFunc("/pages", s.listPages).Methods(http.MethodGet)
	r.HandleFunc("/pages/{page}", s.page).Methods(http.MethodGet)
	r.HandleFunc("/pages/{page}/units", s.units).Methods(http.MethodGet)
	r.HandleFunc("/pages/{page}/refresh", s.refresh).Methods(http.MethodPost)
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.FS(html.AssetsFS()))))
	s.router = r
	return s, nil
}

// requestLogger carries a logger tagged with the request on its context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := telemetry.NewLoggerFrom(s.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger())
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	cfg := s.engine.Config().Server
	if addr == "" {
		addr = cfg.Addr
	}

	if s.watchDir != "" {
		w, err := newWatcher(s.watchDir, s.debounce, s.logger, s.reload)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.watcher = w
		s.mu.Unlock()
		go w.run(ctx)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdown)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// Close releases every screen and stops the watcher.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for page, screen := range s.screens {
		screen.Close()
		delete(s.screens, page)
	}
	if s.watcher != nil {
		s.watcher.close()
	}
}

// screen returns the screen for page, creating and loading it on first use.
// created reports whether this call performed that first load.
func (s *Server) screen(ctx context.Context, page string) (screen *host.Screen, created bool, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, host.ErrClosed
	}
	screen, ok := s.screens[page]
	if ok {
		s.mu.Unlock()
		return screen, false, nil
	}
	screen, err = s.engine.NewScreen(page)
	if err != nil {
		s.mu.Unlock()
		return nil, false, err
	}
	s.screens[page] = screen
	s.mu.Unlock()

	// A client hanging up must not leave the shared screen degraded.
	if _, err := screen.Load(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, host.ErrStaleResponse) {
		return nil, false, err
	}
	return screen, true, nil
}

// reload refreshes page when a screen for it exists. Pages nobody asked for
// yet are loaded lazily with the new file anyway.
func (s *Server) reload(page string) {
	s.mu.Lock()
	screen, ok := s.screens[page]
	s.mu.Unlock()
	if !ok {
		return
	}
	state, err := screen.Refresh(context.Background())
	if err != nil {
		if !errors.Is(err, host.ErrStaleResponse) {
			s.logger.Warn().Err(err).Str("page", page).Msg("layout reload failed")
		}
		return
	}
	s.logger.Info().
		Str("page", page).
		Str("phase", string(state.Phase)).
		Int("units", len(state.Units)).
		Msg("layout reloaded")
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listPages(w http.ResponseWriter, _ *http.Request) {
	pages, err := s.engine.Pages()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if pages == nil {
		pages = []string{}
	}
	sort.Strings(pages)
	writeJSON(w, http.StatusOK, map[string][]string{"pages": pages})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	state, ok := s.settledState(w, r)
	if !ok {
		return
	}
	markup, err := s.engine.Compose(state)
	if err != nil {
		zlog := telemetry.FromContext(r.Context()).Zerolog()
		zlog.Error().Err(err).Msg("compose page failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-SDUI-Phase", string(state.Phase))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}

func (s *Server) units(w http.ResponseWriter, r *http.Request) {
	state, ok := s.settledState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, NewStateView(state))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	page := mux.Vars(r)["page"]
	screen, created, err := s.screen(r.Context(), page)
	if err != nil {
		writeScreenError(w, r, err)
		return
	}
	if created {
		writeJSON(w, http.StatusOK, NewStateView(screen.State()))
		return
	}
	state, err := screen.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, host.ErrStaleResponse) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeScreenError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewStateView(state))
}

func (s *Server) settledState(w http.ResponseWriter, r *http.Request) (host.State, bool) {
	page := mux.Vars(r)["page"]
	screen, _, err := s.screen(r.Context(), page)
	if err != nil {
		writeScreenError(w, r, err)
		return host.State{}, false
	}
	return s.engine.Settle(r.Context(), screen), true
}

// StateView is the JSON form of a screen state served by /pages/{page}/units
// and printed by the CLI.
type StateView struct {
	Phase       string                `json:"phase"`
	PageType    string                `json:"pageType"`
	PassID      string                `json:"passId,omitempty"`
	Generation  uint64                `json:"generation"`
	Cause       string                `json:"cause,omitempty"`
	Units       []UnitView            `json:"units"`
	Diagnostics []resolver.Diagnostic `json:"diagnostics"`
}

// UnitView is the JSON form of one rendered unit.
type UnitView struct {
	Key   string         `json:"key"`
	Index int            `json:"index"`
	Type  string         `json:"type"`
	State string         `json:"state"`
	Fetch fetch.State    `json:"fetch,omitempty"`
	HTML  string         `json:"html,omitempty"`
	Props map[string]any `json:"props,omitempty"`
	Error string         `json:"error,omitempty"`
}

// NewStateView converts state for serialisation.
func NewStateView(state host.State) StateView {
	view := StateView{
		Phase:       string(state.Phase),
		PageType:    state.PageType,
		PassID:      state.PassID,
		Generation:  state.Generation,
		Units:       make([]UnitView, 0, len(state.Units)),
		Diagnostics: state.Diagnostics,
	}
	if state.Cause != nil {
		view.Cause = state.Cause.Error()
	}
	if view.Diagnostics == nil {
		view.Diagnostics = []resolver.Diagnostic{}
	}
	for _, unit := range state.Units {
		item := UnitView{
			Key:   unit.Key,
			Index: unit.Index,
			Type:  unit.Type,
			State: string(unit.State),
			Fetch: unit.Output.Fetch,
			HTML:  unit.Output.HTML,
			Props: unit.Output.Props,
		}
		if unit.Err != nil {
			item.Error = unit.Err.Error()
		}
		view.Units = append(view.Units, item)
	}
	return view
}

func writeScreenError(w http.ResponseWriter, r *http.Request, err error) {
	zlog := telemetry.FromContext(r.Context()).Zerolog()
	zlog.Warn().Err(err).Msg("screen unavailable")
	switch {
	case errors.Is(err, provider.ErrPageNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, host.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
