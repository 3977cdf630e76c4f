package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// snapshotModules are merged in order; the first module to supply a key wins.
var snapshotModules = []string{"financialData", "price", "summaryDetail", "defaultKeyStatistics"}

// quoteSummaryResponse represents the v10 quoteSummary API response.
// Module bodies are kept schema-less and flattened into a Snapshot.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]map[string]any `json:"result"`
		Error  *apiErrorBody               `json:"error"`
	} `json:"quoteSummary"`
}

type apiErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetSnapshot retrieves the quote/info mapping for a ticker.
// Unknown tickers produce an empty snapshot rather than an error.
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (models.Snapshot, error) {
	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))

	params := url.Values{}
	params.Set("modules", strings.Join(snapshotModules, ","))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		if IsNotFound(err) {
			c.logger.Debug().Str("ticker", ticker).Msg("Quote not found")
			return models.Snapshot{}, nil
		}
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		if strings.EqualFold(resp.QuoteSummary.Error.Code, "Not Found") {
			return models.Snapshot{}, nil
		}
		return nil, fmt.Errorf("quoteSummary error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return models.Snapshot{}, nil
	}

	return flattenModules(resp.QuoteSummary.Result[0]), nil
}

// flattenModules merges quoteSummary modules into one mapping.
// Formatted values {"raw": x, "fmt": "..."} collapse to x; empty objects are dropped.
func flattenModules(result map[string]map[string]any) models.Snapshot {
	snap := models.Snapshot{}
	for _, module := range snapshotModules {
		body, ok := result[module]
		if !ok {
			continue
		}
		for key, val := range body {
			if _, exists := snap[key]; exists {
				continue
			}
			if v, keep := unwrapValue(val); keep {
				snap[key] = v
			}
		}
	}
	return snap
}

func unwrapValue(val any) (any, bool) {
	switch v := val.(type) {
	case nil:
		return nil, false
	case map[string]any:
		if raw, ok := v["raw"]; ok {
			return raw, raw != nil
		}
		return nil, false
	default:
		return v, true
	}
}
