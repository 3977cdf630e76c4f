// Package market provides the market data fetcher: it queries the provider for
// one ticker and normalizes the heterogeneous response into a TickerReport.
package market

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/interfaces"
	"github.com/jkcapital/autoanalyst/internal/models"
)

// HistoryPeriod is the price history range attached to every report.
const HistoryPeriod = "1y"

// Service implements MarketService
type Service struct {
	client interfaces.MarketDataClient
	logger *common.Logger
}

// NewService creates a new market data service
func NewService(client interfaces.MarketDataClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		client: client,
		logger: logger,
	}
}

// Fetch queries the provider and returns a normalized report, or a result
// carrying only an error message. It never returns a partial report.
func (s *Service) Fetch(ctx context.Context, ticker string) (result *models.FetchResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().
				Str("ticker", ticker).
				Str("panic", fmt.Sprint(rec)).
				Str("stack", string(debug.Stack())).
				Msg("Panic while fetching market data")
			result = models.FetchError(fmt.Sprint(rec))
		}
	}()

	report, err := s.fetch(ctx, ticker)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("Unexpected error fetching market data")
		return models.FetchError(err.Error())
	}
	if report == nil {
		return models.FetchError(notFoundMessage(ticker))
	}
	return &models.FetchResult{Report: report}
}

// notFoundMessage is shown when the provider has no usable data for a ticker.
func notFoundMessage(ticker string) string {
	return fmt.Sprintf("Ticker %s not found or has no available data", ticker)
}

// fetch runs the provider sequence. A nil report with a nil error means the
// ticker is unknown.
func (s *Service) fetch(ctx context.Context, ticker string) (*models.TickerReport, error) {
	snap, err := s.client.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if len(snap) == 0 || (!snap.Has("symbol") && !snap.Has("currentPrice")) {
		s.logger.Info().Str("ticker", ticker).Msg("Ticker not found")
		return nil, nil
	}

	currentPrice := resolveFloat(snap, currentPriceFields, true).ValueOrZero()
	changePercent := ChangePercent(currentPrice, snap.Float("previousClose").ValueOrZero())

	income, err := s.client.GetIncomeStatement(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("income statement: %w", err)
	}
	balance, err := s.client.GetBalanceSheet(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("balance sheet: %w", err)
	}

	totalRevenue := resolveFloat(snap, revenueFields, true)
	if !models.Truthy(totalRevenue) && !income.Empty() {
		totalRevenue = s.scanStatement(ticker, income, revenueLabels, false)
	}

	rpo := "N/A"
	if !balance.Empty() {
		if v := s.scanStatement(ticker, balance, deferredRevenueLabels, true); v.Valid {
			rpo = fmt.Sprintf("$%.2f B", v.Float64/1e9)
		}
	}

	history, err := s.client.GetPriceHistory(ctx, ticker, HistoryPeriod)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	if history == nil {
		history = models.PriceHistory{}
	}

	report := &models.TickerReport{
		Name:            resolveString(snap, nameFields, ticker),
		Symbol:          ticker,
		CurrentPrice:    currentPrice,
		ChangePercent:   changePercent,
		TotalRevenue:    totalRevenue,
		EPSGAAP:         resolveFloat(snap, epsGAAPFields, false),
		EPSNonGAAP:      resolveFloat(snap, epsNonGAAPFields, false),
		RPOProxy:        rpo,
		PERatio:         resolveFloat(snap, peFields, false),
		ForwardPE:       resolveFloat(snap, forwardPEFields, false),
		FairPrice:       resolveFloat(snap, fairPriceFields, false),
		GrossMargin:     resolveFloat(snap, grossMarginFields, false),
		OperatingMargin: resolveFloat(snap, operatingMarginFields, false),
		Beta:            resolveFloat(snap, betaFields, false),
		MarketCap:       resolveFloat(snap, marketCapFields, false),
		History:         history,
		Currency:        resolveString(snap, currencyFields, "USD"),
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Float64("price", report.CurrentPrice).
		Int("bars", len(report.History)).
		Msg("Market data normalized")

	return report, nil
}

// ChangePercent returns the signed percentage move from previous close.
// Zero is returned whenever either input is zero, guarding missing data and
// division by zero the same way.
func ChangePercent(current, previousClose float64) float64 {
	if current == 0 || previousClose == 0 {
		return 0.0
	}
	return (current - previousClose) / previousClose * 100
}

// scanStatement scans a statement for the first candidate label present and
// returns its most recent value. With requireValue, labels whose latest value
// is null are passed over. Errors reading a label are logged and the label skipped.
func (s *Service) scanStatement(ticker string, stmt *models.Statement, labels []string, requireValue bool) null.Float {
	for _, label := range labels {
		if !stmt.HasRow(label) {
			continue
		}
		v, err := stmt.Value(label, 0)
		if err != nil {
			s.logger.Error().Err(err).
				Str("ticker", ticker).
				Str("label", label).
				Msg("Error reading statement label")
			continue
		}
		if requireValue && !v.Valid {
			continue
		}
		return v
	}
	return null.Float{}
}

// resolveString returns the first non-blank string among the candidate keys.
func resolveString(snap models.Snapshot, specs []fieldSpec, fallback string) string {
	for _, spec := range specs {
		if v := strings.TrimSpace(snap.String(spec.Key)); v != "" {
			return v
		}
	}
	return fallback
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
