package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

// ErrDuplicateName is returned by Register when the name is taken.
var ErrDuplicateName = errors.New("inspect: cell name already registered")

// ErrUnnamed is returned by Register for cells created without WithName.
var ErrUnnamed = errors.New("inspect: cell has no name")

// CellState is the JSON form of one cell.
type CellState struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Generation uint64 `json:"generation"`
	Value      any    `json:"value"`
}

// entry is the type-erased view of a registered cell.
type entry struct {
	info  reactive.CellInfo
	state func() CellState
	watch func(ctx context.Context) <-chan CellState
}

// Server is the inspector. Register cells on it, then mount Handler.
type Server struct {
	mu      sync.RWMutex
	cells   map[string]*entry
	clients map[*websocket.Conn]struct{}

	tree     *scope.Tree
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithTree exposes t on /scopes.
func WithTree(t *scope.Tree) Option {
	return func(s *Server) {
		s.tree = t
	}
}

// WithGatherer serves g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates an inspector with no cells registered.
func New(opts ...Option) *Server {
	s := &Server{
		cells:   make(map[string]*entry),
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local debugging tool
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.router = s.routes()
	return s
}

// Register exposes d under its name. The inspector holds no handle of its
// own: once every handle to d is released, open streams end.
func Register[T any](s *Server, d *reactive.Dynamic[T]) error {
	info := d.Info()
	if info.Name == "" {
		return ErrUnnamed
	}

	toState := func(g reactive.Generational[T]) CellState {
		return CellState{
			ID:         info.ID,
			Name:       info.Name,
			Kind:       info.Kind.String(),
			Generation: uint64(g.Generation),
			Value:      g.Value,
		}
	}

	e := &entry{
		info:  info,
		state: func() CellState { return toState(d.GetGenerational()) },
		watch: func(ctx context.Context) <-chan CellState {
			r := d.CreateReader()
			out := make(chan CellState)
			go func() {
				defer close(out)
				defer r.Close()
				for g := range r.StreamGenerational(ctx) {
					select {
					case out <- toState(g):
					case <-ctx.Done():
						return
					}
				}
			}()
			return out
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cells[info.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, info.Name)
	}
	s.cells[info.Name] = e
	return nil
}

// Unregister removes the cell registered under name. Open streams keep
// running until their client disconnects.
func (s *Server) Unregister(name string) {
	s.mu.Lock()
	delete(s.cells, name)
	s.mu.Unlock()
}

// Handler returns the HTTP handler for all inspector routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/cells", s.handleCells)
	r.Get("/cells/{name}", s.handleCell)
	r.Get("/ws/{name}", s.handleWatch)
	r.Get("/scopes", s.handleScopes)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("inspect request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
		)
	})
}

func (s *Server) lookup(name string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cells[name]
	return e, ok
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.cells))
	for _, e := range s.cells {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	slices.SortFunc(entries, func(a, b *entry) int {
		switch {
		case a.info.ID < b.info.ID:
			return -1
		case a.info.ID > b.info.ID:
			return 1
		}
		return 0
	})

	states := make([]CellState, 0, len(entries))
	for _, e := range entries {
		states = append(states, e.state())
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown cell", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e.state())
}

func (s *Server) handleScopes(w http.ResponseWriter, r *http.Request) {
	if s.tree == nil {
		http.Error(w, "no scope tree", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.tree.Snapshot())
}

// handleWatch streams a cell over a WebSocket: the current state first,
// then every update the client can keep up with.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown cell", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// Client messages are ignored; a read error means it went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates := e.watch(ctx)
	if err := conn.WriteJSON(e.state()); err != nil {
		return
	}
	for state := range updates {
		if err := conn.WriteJSON(state); err != nil {
			s.logger.Debug("inspect client write failed", "cell", e.info.Name, "error", err)
			return
		}
	}

	// The cell was disconnected.
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "cell disconnected"))
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

// ListenAndServe serves the inspector on addr until ctx ends, then shuts
// the listener down and closes client connections.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("inspector listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}
