package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joomcode/errorx"

	"github.com/statsbridge/statsbridge/utils"
)

// StatsFunc returns the current internal stats to render
type StatsFunc func() map[string]uint64

// HTTPServer serves health checks and internal stats
type HTTPServer struct {
	config Config
	router chi.Router
	server *http.Server
	addr   net.Addr

	started bool
	mu      sync.Mutex
	done    chan struct{}

	log *slog.Logger
}

// NewServer builds HTTPServer from config params
func NewServer(c Config, stats StatsFunc, l *slog.Logger) *HTTPServer {
	s := &HTTPServer{
		config: c,
		done:   make(chan struct{}),
		log:    l.With("context", "http"),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.logRequests)

	router.Get(c.HealthPath, s.HealthHandler)

	if stats != nil {
		router.Get(c.StatsPath, s.StatsHandler(stats))
	}

	s.router = router
	s.server = &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}

	return s
}

// Start binds the address and serves requests in background
func (s *HTTPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errorx.IllegalState.New("HTTP server has been already started")
	}

	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return errorx.Decorate(err, "failed to bind HTTP server to %s", s.config.Address())
	}

	s.addr = ln.Addr()
	s.started = true

	go func() {
		defer close(s.done)

		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server failed", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address (nil before Start)
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addr
}

// Shutdown stops accepting requests and waits for the active ones
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}

	err := s.server.Shutdown(ctx)

	select {
	case <-s.done:
	case <-ctx.Done():
	}

	return err
}

func (s *HTTPServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug("request served", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(utils.ToJSON(v)) // nolint:errcheck
}
