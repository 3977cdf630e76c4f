package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkcapital/autoanalyst/internal/app"
	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/models"
	"github.com/jkcapital/autoanalyst/internal/storage"
)

// --- mocks ---

type stubMarket struct {
	fail      string
	noHistory bool
}

func (m *stubMarket) Fetch(_ context.Context, ticker string) *models.FetchResult {
	if m.fail != "" {
		return models.FetchError(m.fail)
	}
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := 20
	if m.noHistory {
		bars = 0
	}
	history := make(models.PriceHistory, bars)
	for i := range history {
		c := 100 + float64(i)
		history[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, AdjClose: c}
	}
	return &models.FetchResult{Report: &models.TickerReport{
		Name:         "Apple Inc.",
		Symbol:       ticker,
		CurrentPrice: 150,
		MarketCap:    null.FloatFrom(3e12),
		RPOProxy:     "N/A",
		History:      history,
		Currency:     "USD",
	}}
}

type stubReport struct{}

func (stubReport) Generate(_ context.Context, _ string) string {
	return "## 🏢 O spoločnosti\n\nApple <b>navrhuje</b> zariadenia."
}

func newTestServer(t *testing.T, market *stubMarket) *Server {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewSilentLogger()

	history, err := storage.NewHistoryStore(logger, &common.AreaConfig{Path: filepath.Join(dir, "history")})
	require.NoError(t, err)
	charts, err := storage.NewChartCache(logger, &common.AreaConfig{Path: filepath.Join(dir, "charts")})
	require.NoError(t, err)

	a := app.New(common.NewDefaultConfig(), logger, market, stubReport{}, history, charts)
	return NewServer(a)
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func analyze(t *testing.T, s *Server, ticker string) *models.Dashboard {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/analyze/"+ticker)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var d models.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return &d
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, &stubMarket{})

	rec := do(t, s, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = do(t, s, http.MethodGet, "/api/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t, &stubMarket{})

	d := analyze(t, s, "aapl")

	require.NotNil(t, d.Analysis)
	assert.Equal(t, "AAPL", d.Analysis.Ticker)
	assert.NotEmpty(t, d.Analysis.RecordID)
	assert.NotEmpty(t, d.Cards)
	assert.Equal(t, "$3.00 T", d.Cards[1].Value)
}

func TestAnalyze_MarketFailure(t *testing.T) {
	s := newTestServer(t, &stubMarket{fail: "Ticker ZZZZ not found or has no available data"})

	rec := do(t, s, http.MethodPost, "/api/analyze/ZZZZ")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ticker ZZZZ not found or has no available data", body.Error)
	assert.Equal(t, "market_data", body.Code)

	rec = do(t, s, http.MethodGet, "/api/history")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAnalyze_WrongMethod(t *testing.T) {
	s := newTestServer(t, &stubMarket{})
	rec := do(t, s, http.MethodGet, "/api/analyze/AAPL")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSession(t *testing.T) {
	s := newTestServer(t, &stubMarket{})

	rec := do(t, s, http.MethodGet, "/api/session")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	analyze(t, s, "MSFT")

	rec = do(t, s, http.MethodGet, "/api/session")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticker":"MSFT"`)

	rec = do(t, s, http.MethodDelete, "/api/session")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/session")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHistory(t *testing.T) {
	s := newTestServer(t, &stubMarket{})
	d := analyze(t, s, "NVDA")
	id := d.Analysis.RecordID

	rec := do(t, s, http.MethodGet, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)

	s.app.Session.Clear()
	rec = do(t, s, http.MethodGet, "/api/history/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.app.Session.Current())
	assert.Equal(t, "NVDA", s.app.Session.Current().Ticker)

	rec = do(t, s, http.MethodGet, "/api/history/NOPE_20200101_000000.json")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/history/bad..json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHTMLAndDownload(t *testing.T) {
	s := newTestServer(t, &stubMarket{})
	id := analyze(t, s, "AAPL").Analysis.RecordID

	rec := do(t, s, http.MethodGet, "/report/"+id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>🏢 O spoločnosti</h2>")
	assert.Contains(t, body, "<table>")
	assert.NotContains(t, body, "<b>navrhuje</b>", "raw HTML from the model is not passed through")

	rec = do(t, s, http.MethodGet, "/report/"+id+"/download")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="AAPL_analyza.md"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "## 🏢 O spoločnosti")
}

func TestChart(t *testing.T) {
	s := newTestServer(t, &stubMarket{})
	id := analyze(t, s, "AAPL").Analysis.RecordID

	rec := do(t, s, http.MethodGet, "/chart/"+id[:len(id)-len(".json")]+".png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))

	rec = do(t, s, http.MethodGet, "/chart/NOPE_20200101_000000.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/chart/"+id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChart_EmptyHistory(t *testing.T) {
	s := newTestServer(t, &stubMarket{noHistory: true})
	id := analyze(t, s, "NEWCO").Analysis.RecordID

	rec := do(t, s, http.MethodGet, "/chart/"+id[:len(id)-len(".json")]+".png")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no_price_history", body.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, &stubMarket{})
	rec := do(t, s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")
}
