package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/models"
	"github.com/jkcapital/autoanalyst/internal/services/chart"
	"github.com/jkcapital/autoanalyst/internal/storage"
)

// --- mocks ---

type mockMarket struct {
	fetchFn func(ctx context.Context, ticker string) *models.FetchResult
	calls   []string
}

func (m *mockMarket) Fetch(ctx context.Context, ticker string) *models.FetchResult {
	m.calls = append(m.calls, ticker)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, ticker)
	}
	return models.FetchError("not implemented")
}

type mockReport struct {
	text  string
	calls int32
}

func (m *mockReport) Generate(_ context.Context, _ string) string {
	atomic.AddInt32(&m.calls, 1)
	return m.text
}

func reportFor(ticker string) *models.TickerReport {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	history := make(models.PriceHistory, 30)
	for i := range history {
		c := 100 + float64(i)
		history[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, AdjClose: c, Volume: 1000}
	}
	return &models.TickerReport{
		Name:          ticker + " Corp",
		Symbol:        ticker,
		CurrentPrice:  150,
		ChangePercent: 50,
		MarketCap:     null.FloatFrom(2.5e12),
		RPOProxy:      "N/A",
		History:       history,
		Currency:      "USD",
	}
}

type testHarness struct {
	app     *App
	market  *mockMarket
	report  *mockReport
	history *storage.HistoryStore
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewSilentLogger()

	history, err := storage.NewHistoryStore(logger, &common.AreaConfig{Path: filepath.Join(dir, "history")},
		storage.WithClock(func() time.Time { return time.Date(2024, 3, 5, 14, 30, 9, 0, time.Local) }))
	require.NoError(t, err)
	charts, err := storage.NewChartCache(logger, &common.AreaConfig{Path: filepath.Join(dir, "charts")})
	require.NoError(t, err)

	m := &mockMarket{fetchFn: func(_ context.Context, ticker string) *models.FetchResult {
		return &models.FetchResult{Report: reportFor(ticker)}
	}}
	r := &mockReport{text: "## 🏢 O spoločnosti\n\nReport."}

	return &testHarness{
		app:     New(nil, logger, m, r, history, charts),
		market:  m,
		report:  r,
		history: history,
	}
}

func TestAnalyze_SavesAndSetsSession(t *testing.T) {
	h := newHarness(t)

	analysis, err := h.app.Analyze(context.Background(), "  aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", analysis.Ticker)
	assert.Equal(t, []string{"AAPL"}, h.market.calls)
	assert.Equal(t, "AAPL_20240305_143009.json", analysis.RecordID)
	assert.Equal(t, "## 🏢 O spoločnosti\n\nReport.", analysis.AIReport)
	assert.Same(t, analysis, h.app.Session.Current())

	entries := h.app.HistoryList()
	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL", entries[0].Ticker)
}

func TestAnalyze_FetchFailureSkipsReportAndHistory(t *testing.T) {
	h := newHarness(t)
	h.market.fetchFn = func(context.Context, string) *models.FetchResult {
		return models.FetchError("Ticker ZZZZZ not found or has no available data")
	}

	analysis, err := h.app.Analyze(context.Background(), "zzzzz")
	require.Error(t, err)
	assert.Nil(t, analysis)

	var aerr *AnalysisError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "ZZZZZ", aerr.Ticker)
	assert.Equal(t, "Ticker ZZZZZ not found or has no available data", aerr.Error())

	assert.Equal(t, int32(0), atomic.LoadInt32(&h.report.calls))
	assert.Empty(t, h.app.HistoryList())
	assert.Nil(t, h.app.Session.Current())
}

func TestAnalyze_ReportErrorStillSaved(t *testing.T) {
	h := newHarness(t)
	h.report.text = "Chyba pri generovaní analýzy: boom"

	analysis, err := h.app.Analyze(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Chyba pri generovaní analýzy: boom", analysis.AIReport)
	assert.Len(t, h.app.HistoryList(), 1)
}

func TestAnalyze_EmptyTicker(t *testing.T) {
	h := newHarness(t)

	_, err := h.app.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTicker)
	assert.Empty(t, h.market.calls)
}

func TestLoadAnalysis(t *testing.T) {
	h := newHarness(t)
	saved, err := h.app.Analyze(context.Background(), "NVDA")
	require.NoError(t, err)
	h.app.Session.Clear()

	loaded, err := h.app.LoadAnalysis(saved.RecordID)
	require.NoError(t, err)

	assert.Equal(t, "NVDA", loaded.Ticker)
	assert.Equal(t, saved.AIReport, loaded.AIReport)
	assert.Equal(t, null.FloatFrom(2.5e12), loaded.Report.MarketCap)
	assert.Len(t, loaded.Report.History, 30)
	assert.Same(t, loaded, h.app.Session.Current())
}

func TestLoadAnalysis_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.app.LoadAnalysis("NOPE_20200101_000000.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	analysis, err := h.app.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	d := h.app.Dashboard(analysis)
	require.NotNil(t, d)
	assert.Equal(t, "+50.00%", d.Change)
	assert.NotEmpty(t, d.Cards)
	require.NotNil(t, d.Technicals)
	assert.True(t, d.Technicals.RSI14.Valid)

	assert.Nil(t, h.app.Dashboard(nil))
}

func TestDocument(t *testing.T) {
	h := newHarness(t)
	analysis, err := h.app.Analyze(context.Background(), "TSLA")
	require.NoError(t, err)

	doc, name, err := h.app.Document(analysis.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "TSLA_analyza.md", name)
	assert.Contains(t, doc, "# TSLA Corp (TSLA)")
	assert.Contains(t, doc, "Report.")
}

func TestChart_RendersAndCaches(t *testing.T) {
	h := newHarness(t)
	analysis, err := h.app.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	png, err := h.app.Chart(analysis.RecordID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}))

	cached, err := h.app.Charts.Get(analysis.RecordID)
	require.NoError(t, err)
	assert.Equal(t, png, cached)
}

func TestChart_EmptyHistory(t *testing.T) {
	h := newHarness(t)
	h.market.fetchFn = func(_ context.Context, ticker string) *models.FetchResult {
		r := reportFor(ticker)
		r.History = models.PriceHistory{}
		return &models.FetchResult{Report: r}
	}

	analysis, err := h.app.Analyze(context.Background(), "NEWCO")
	require.NoError(t, err)

	_, err = h.app.Chart(analysis.RecordID)
	assert.ErrorIs(t, err, chart.ErrInsufficientData)
	assert.NotErrorIs(t, err, ErrNotFound)

	cached, err := h.app.Charts.Get(analysis.RecordID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "BRK.B", NormalizeTicker(" brk.b\n"))
	assert.Equal(t, "", NormalizeTicker("  "))
}

func TestSession(t *testing.T) {
	s := NewSession()
	assert.Nil(t, s.Current())

	a := &models.Analysis{Ticker: "A"}
	b := &models.Analysis{Ticker: "B"}
	s.Set(a)
	s.Set(b)
	assert.Same(t, b, s.Current())

	s.Clear()
	assert.Nil(t, s.Current())
}

func TestNewApp_MissingAPIKeyIsFatal(t *testing.T) {
	dir := t.TempDir()
	for _, env := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "AUTOANALYST_GEMINI_API_KEY"} {
		t.Setenv(env, "")
	}
	t.Setenv("AUTOANALYST_SECRETS_FILE", filepath.Join(dir, "missing-secrets.toml"))
	t.Setenv("AUTOANALYST_HISTORY_PATH", filepath.Join(dir, "history"))

	configPath := filepath.Join(dir, "autoanalyst.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("env_file = \"\"\n"), 0644))

	_, err := NewApp(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "explicit.toml", resolveConfigPath("explicit.toml"))

	t.Setenv("AUTOANALYST_CONFIG", "/etc/autoanalyst.toml")
	assert.Equal(t, "/etc/autoanalyst.toml", resolveConfigPath(""))
}

func TestNewHistoryApp_NoCredentialsNeeded(t *testing.T) {
	dir := t.TempDir()
	for _, env := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "AUTOANALYST_GEMINI_API_KEY"} {
		t.Setenv(env, "")
	}
	t.Setenv("AUTOANALYST_SECRETS_FILE", filepath.Join(dir, "missing-secrets.toml"))
	t.Setenv("AUTOANALYST_HISTORY_PATH", filepath.Join(dir, "history"))

	configPath := filepath.Join(dir, "autoanalyst.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("env_file = \"\"\n"), 0644))

	a, err := NewHistoryApp(configPath)
	require.NoError(t, err)
	assert.Empty(t, a.HistoryList())

	_, err = a.Analyze(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
}
