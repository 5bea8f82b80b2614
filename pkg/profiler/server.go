// Package profiler serves pprof and a JSON status snapshot over HTTP for
// live inspection of a running session.
package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StatusFunc returns a JSON-encodable snapshot served at /status.
type StatusFunc func() any

type Option func(*Server)

// WithStatus exposes fn at /status.
func WithStatus(fn StatusFunc) Option {
	return func(s *Server) { s.status = fn }
}

type Server struct {
	httpServer *http.Server
	listener   net.Listener
	port       int
	status     StatusFunc
	log        zerolog.Logger
}

// New creates a profiler listening on 127.0.0.1:port once started. Port 0
// picks a free port.
func New(port int, opts ...Option) *Server {
	s := &Server{
		port: port,
		log:  log.With().Str("cmp", "profiler").Logger(),
	}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/debug", middleware.Profiler())
	if s.status != nil {
		r.Get("/status", s.handleStatus)
	}

	s.httpServer = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.status()); err != nil {
		s.log.Warn().Err(err).Msg("encode status")
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = listener
	s.log.Info().Str("addr", listener.Addr().String()).Msg("profiler listening")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("profiler stopped")
		}
	}()
	return nil
}

// Addr returns the bound address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
