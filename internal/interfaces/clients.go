// Package interfaces defines service contracts for autoanalyst
package interfaces

import (
	"context"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// MarketDataClient provides raw market data for a single ticker
type MarketDataClient interface {
	// GetSnapshot retrieves the quote/info mapping. An empty snapshot means the
	// provider knows nothing about the ticker.
	GetSnapshot(ctx context.Context, ticker string) (models.Snapshot, error)

	// GetIncomeStatement retrieves the annual income statement series
	GetIncomeStatement(ctx context.Context, ticker string) (*models.Statement, error)

	// GetBalanceSheet retrieves the annual balance sheet series
	GetBalanceSheet(ctx context.Context, ticker string) (*models.Statement, error)

	// GetPriceHistory retrieves daily bars for a range such as "1y", oldest first
	GetPriceHistory(ctx context.Context, ticker string, period string) (models.PriceHistory, error)
}

// GeminiClient provides access to the Gemini generative AI API
type GeminiClient interface {
	// GenerateGrounded issues one request with Google Search grounding enabled
	// and plain-text output. Empty text with a nil error is a valid response.
	GenerateGrounded(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier used for requests
	Model() string
}
