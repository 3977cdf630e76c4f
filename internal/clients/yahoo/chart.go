package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// chartResponse represents the v8 chart API response
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiErrorBody `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// GetPriceHistory retrieves daily bars for the given range ("1mo", "6mo", "1y"...)
func (c *Client) GetPriceHistory(ctx context.Context, ticker string, period string) (models.PriceHistory, error) {
	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(ticker))

	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", "1d")
	params.Set("events", "div,splits")

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return models.PriceHistory{}, nil
	}

	return parseBars(resp.Chart.Result[0]), nil
}

// parseBars converts the columnar chart payload into bars, skipping days
// without a close (holidays, halted sessions).
func parseBars(r chartResult) models.PriceHistory {
	bars := make(models.PriceHistory, 0, len(r.Timestamp))
	if len(r.Indicators.Quote) == 0 {
		return bars
	}
	q := r.Indicators.Quote[0]
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	for i, ts := range r.Timestamp {
		closePx := floatAt(q.Close, i)
		if closePx == nil {
			continue
		}
		bar := models.PriceBar{
			Date:     time.Unix(ts, 0).UTC(),
			Close:    *closePx,
			AdjClose: *closePx,
		}
		if v := floatAt(q.Open, i); v != nil {
			bar.Open = *v
		}
		if v := floatAt(q.High, i); v != nil {
			bar.High = *v
		}
		if v := floatAt(q.Low, i); v != nil {
			bar.Low = *v
		}
		if v := floatAt(adj, i); v != nil {
			bar.AdjClose = *v
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func floatAt(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}
