package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jkcapital/autoanalyst/internal/app"
	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/services/chart"
	"github.com/jkcapital/autoanalyst/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleAnalyze runs a full analysis for the path ticker and returns the dashboard view.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := app.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	analysis, err := s.app.Analyze(r.Context(), ticker)
	if err != nil {
		var aerr *app.AnalysisError
		if errors.As(err, &aerr) {
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, aerr.Message, "market_data")
			return
		}
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("Analysis failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, s.app.Dashboard(analysis))
}

// handleSession returns the current analysis, or 204 when none is loaded.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	current := s.app.Session.Current()
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Dashboard(current))
}

func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	s.app.Session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.app.HistoryList())
}

// handleHistoryLoad loads a saved analysis into the session and returns it.
func (s *Server) handleHistoryLoad(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.app.LoadAnalysis(chi.URLParam(r, "id"))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Dashboard(analysis))
}

// handleReportHTML renders the downloadable document as an HTML page.
func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, _, err := s.app.Document(id)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	page, err := renderReportPage(strings.TrimSuffix(id, ".json"), doc)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// handleReportDownload serves the markdown document as an attachment.
func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	doc, name, err := s.app.Document(chi.URLParam(r, "id"))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// handleChart serves the one-year price chart for a record. The path carries
// the record id with a .png extension in place of .json.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !strings.HasSuffix(name, ".png") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	id := strings.TrimSuffix(name, ".png") + ".json"

	png, err := s.app.Chart(id)
	if err != nil {
		if errors.Is(err, chart.ErrInsufficientData) {
			s.logger.Debug().Err(err).Str("id", id).Msg("No chart for record")
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "no_price_history")
			return
		}
		s.writeLoadError(w, err)
		return
	}

	// a same-second re-save replaces the record under the same id
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeLoadError maps history lookup failures to HTTP status codes.
func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, storage.ErrInvalidID) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error().Err(err).Msg("Failed to load analysis")
	WriteError(w, http.StatusInternalServerError, err.Error())
}
