package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(correlationIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoveryMiddleware(s.logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		r.With(middleware.Timeout(5*time.Minute)).Post("/analyze/{ticker}", s.handleAnalyze)

		r.Get("/session", s.handleSession)
		r.Delete("/session", s.handleSessionClear)

		r.Get("/history", s.handleHistoryList)
		r.Get("/history/{id}", s.handleHistoryLoad)
	})

	r.Get("/report/{id}", s.handleReportHTML)
	r.Get("/report/{id}/download", s.handleReportDownload)
	r.Get("/chart/{name}", s.handleChart)

	return r
}
