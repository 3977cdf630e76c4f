// Package server provides the HTTP presentation layer for autoanalyst.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jkcapital/autoanalyst/internal/app"
	"github.com/jkcapital/autoanalyst/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app    *app.App
	router chi.Router
	server *http.Server
	logger *common.Logger
}

// NewServer creates a new HTTP server for the dashboard API.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger,
	}

	s.router = s.buildRouter()

	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// Analysis may wait through rate-limit backoff before answering.
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
