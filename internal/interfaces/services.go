package interfaces

import (
	"context"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// MarketService fetches and normalizes market data
type MarketService interface {
	// Fetch never returns an error: failures are reported in FetchResult.Error
	Fetch(ctx context.Context, ticker string) *models.FetchResult
}

// ReportService produces the AI narrative report
type ReportService interface {
	// Generate always returns text: the report or a human-readable error message
	Generate(ctx context.Context, ticker string) string
}
