// Package app wires configuration, clients, services and storage into the
// shared core used by the CLI and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jkcapital/autoanalyst/internal/clients/gemini"
	"github.com/jkcapital/autoanalyst/internal/clients/yahoo"
	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/interfaces"
	"github.com/jkcapital/autoanalyst/internal/models"
	"github.com/jkcapital/autoanalyst/internal/services/chart"
	"github.com/jkcapital/autoanalyst/internal/services/market"
	"github.com/jkcapital/autoanalyst/internal/services/report"
	"github.com/jkcapital/autoanalyst/internal/signals"
	"github.com/jkcapital/autoanalyst/internal/storage"
)

// ErrNotFound is returned when a history record does not exist.
var ErrNotFound = errors.New("analysis not found")

// ErrEmptyTicker is returned when no ticker symbol was given.
var ErrEmptyTicker = errors.New("ticker symbol is required")

// ErrAnalysisUnavailable is returned by Analyze on an App opened without services.
var ErrAnalysisUnavailable = errors.New("analysis services are not configured")

// AnalysisError reports a market data failure. No history record is written
// when an analysis fails this way.
type AnalysisError struct {
	Ticker  string
	Message string
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// App holds all initialized services, clients and storage.
// It is the shared core used by every cmd/autoanalyst subcommand.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	MarketService interfaces.MarketService
	ReportService interfaces.ReportService
	History       interfaces.HistoryStore
	Charts        *storage.ChartCache
	Session       *Session
	StartupTime   time.Time

	// one analysis runs at a time
	mu sync.Mutex
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: explicit path, AUTOANALYST_CONFIG,
// the binary directory, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("AUTOANALYST_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "autoanalyst.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/autoanalyst.toml"
		}
	}
	return configPath
}

// loadConfig resolves and loads configuration and builds the logger from it.
func loadConfig(configPath string) (*common.Config, *common.Logger, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, common.NewLoggerFromConfig(config.Logging), nil
}

// openStorage opens the history store and chart cache.
func openStorage(config *common.Config, logger *common.Logger) (*storage.HistoryStore, *storage.ChartCache, error) {
	history, err := storage.NewHistoryStore(logger, &config.Storage.History)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize history store: %w", err)
	}
	charts, err := storage.NewChartCache(logger, &config.Storage.Charts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize chart cache: %w", err)
	}
	return history, charts, nil
}

// NewApp loads configuration and initializes clients, services and storage.
// A missing Gemini API key is fatal.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	config, logger, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	geminiKey, err := common.ResolveAPIKey(config.SecretsFile, "GOOGLE_API_KEY", config.Clients.Gemini.APIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini API key: %w", err)
	}

	ctx := context.Background()
	geminiClient, err := gemini.NewClient(ctx, geminiKey,
		gemini.WithLogger(logger),
		gemini.WithModel(config.Clients.Gemini.Model),
		gemini.WithBaseURL(config.Clients.Gemini.BaseURL),
		gemini.WithCitations(config.Clients.Gemini.Citations),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithUserAgent(config.Clients.Yahoo.UserAgent),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	history, charts, err := openStorage(config, logger)
	if err != nil {
		return nil, err
	}

	marketService := market.NewService(yahooClient, logger)
	reportService := report.NewService(geminiClient, logger,
		report.WithMaxAttempts(config.Clients.Gemini.MaxAttempts),
		report.WithBaseBackoff(config.Clients.Gemini.GetBaseBackoff()),
	)

	a := New(config, logger, marketService, reportService, history, charts)
	a.StartupTime = startupStart

	logger.Info().
		Str("model", geminiClient.Model()).
		Str("history", history.Dir()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// NewHistoryApp opens configuration and storage only. It serves history
// browsing without API credentials; Analyze is unavailable on it.
func NewHistoryApp(configPath string) (*App, error) {
	config, logger, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	history, charts, err := openStorage(config, logger)
	if err != nil {
		return nil, err
	}
	return New(config, logger, nil, nil, history, charts), nil
}

// New assembles an App from already constructed services. charts may be nil.
func New(
	config *common.Config,
	logger *common.Logger,
	marketService interfaces.MarketService,
	reportService interfaces.ReportService,
	history interfaces.HistoryStore,
	charts *storage.ChartCache,
) *App {
	if config == nil {
		config = common.NewDefaultConfig()
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &App{
		Config:        config,
		Logger:        logger,
		MarketService: marketService,
		ReportService: reportService,
		History:       history,
		Charts:        charts,
		Session:       NewSession(),
		StartupTime:   time.Now(),
	}
}

// NormalizeTicker trims and upper-cases a user-entered symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Analyze fetches market data, generates the AI report, saves the run to
// history and makes it the current session analysis. When market data cannot
// be fetched an *AnalysisError is returned and nothing is saved.
func (a *App) Analyze(ctx context.Context, ticker string) (*models.Analysis, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrEmptyTicker
	}

	if a.MarketService == nil || a.ReportService == nil {
		return nil, ErrAnalysisUnavailable
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.Logger.Info().Str("ticker", ticker).Msg("Analysis started")
	start := time.Now()

	result := a.MarketService.Fetch(ctx, ticker)
	if result.Failed() {
		msg := "unknown market data error"
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		a.Logger.Warn().Str("ticker", ticker).Str("error", msg).Msg("Market data unavailable")
		return nil, &AnalysisError{Ticker: ticker, Message: msg}
	}

	aiReport := a.ReportService.Generate(ctx, ticker)

	analysis := &models.Analysis{
		Ticker:   ticker,
		Report:   result.Report,
		AIReport: aiReport,
	}

	id, err := a.History.Save(ticker, result.Report.Fields(), aiReport)
	if err != nil {
		a.Logger.Error().Err(err).Str("ticker", ticker).Msg("Failed to save analysis to history")
	} else {
		analysis.RecordID = id
		if a.Charts != nil {
			a.Charts.Invalidate(id)
		}
	}

	a.Session.Set(analysis)

	a.Logger.Info().
		Str("ticker", ticker).
		Str("id", analysis.RecordID).
		Bool("report_error", report.IsErrorMessage(aiReport)).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis complete")

	return analysis, nil
}

// LoadAnalysis reads a history record and makes it the current session analysis.
func (a *App) LoadAnalysis(id string) (*models.Analysis, error) {
	analysis, err := a.readAnalysis(id)
	if err != nil {
		return nil, err
	}
	a.Session.Set(analysis)
	return analysis, nil
}

// readAnalysis reconstructs an Analysis from a history record.
func (a *App) readAnalysis(id string) (*models.Analysis, error) {
	rec, err := a.History.Load(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	tickerReport, err := rec.Report()
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", id, err)
	}

	return &models.Analysis{
		Ticker:   rec.Ticker,
		Report:   tickerReport,
		AIReport: rec.AIReport,
		RecordID: id,
	}, nil
}

// HistoryList returns saved analyses, newest first.
func (a *App) HistoryList() []models.HistoryEntry {
	return a.History.List()
}

// Dashboard builds the presentation view of an analysis.
func (a *App) Dashboard(analysis *models.Analysis) *models.Dashboard {
	if analysis == nil {
		return nil
	}
	d := &models.Dashboard{Analysis: analysis}
	if r := analysis.Report; r != nil {
		d.Change = market.FormatChange(r.ChangePercent)
		d.Cards = market.MetricCards(r)
		d.Technicals = signals.Summarize(r.History)
	}
	return d
}

// Document returns the downloadable markdown for a history record and its file name.
func (a *App) Document(id string) (string, string, error) {
	analysis, err := a.readAnalysis(id)
	if err != nil {
		return "", "", err
	}
	doc := report.FormatDocument(analysis, market.MetricCards(analysis.Report))
	return doc, report.DownloadName(analysis.Ticker), nil
}

// Chart returns the one-year price chart PNG for a history record, rendering
// and caching it on first request.
func (a *App) Chart(id string) ([]byte, error) {
	if a.Charts != nil {
		cached, err := a.Charts.Get(id)
		if err != nil {
			a.Logger.Warn().Err(err).Str("id", id).Msg("Chart cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	analysis, err := a.readAnalysis(id)
	if err != nil {
		return nil, err
	}

	png, err := chart.RenderPriceChart(analysis.Ticker, analysis.Report.History)
	if err != nil {
		return nil, err
	}

	if a.Charts != nil {
		if err := a.Charts.Put(id, png); err != nil {
			a.Logger.Warn().Err(err).Str("id", id).Msg("Chart cache write failed")
		}
	}
	return png, nil
}
