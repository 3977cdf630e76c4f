package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/guregu/null/v6"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// incomeStatementTypes and balanceSheetTypes are the fundamentals-timeseries
// line items requested for each statement (without the "annual" prefix).
var incomeStatementTypes = []string{
	"TotalRevenue", "OperatingRevenue", "GrossProfit", "OperatingIncome",
	"NetIncome", "DilutedEPS", "BasicEPS", "EBITDA",
}

var balanceSheetTypes = []string{
	"TotalAssets", "TotalLiabilitiesNetMinorityInterest", "StockholdersEquity",
	"CurrentDeferredRevenue", "NonCurrentDeferredRevenue", "DeferredRevenue",
	"ContractLiabilities", "CashAndCashEquivalents", "TotalDebt",
}

// timeseriesResponse represents the fundamentals-timeseries API response.
// Each result carries its values under a key equal to its type name.
type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]any `json:"result"`
		Error  *apiErrorBody    `json:"error"`
	} `json:"timeseries"`
}

// GetIncomeStatement retrieves the annual income statement
func (c *Client) GetIncomeStatement(ctx context.Context, ticker string) (*models.Statement, error) {
	return c.getStatement(ctx, ticker, incomeStatementTypes)
}

// GetBalanceSheet retrieves the annual balance sheet
func (c *Client) GetBalanceSheet(ctx context.Context, ticker string) (*models.Statement, error) {
	return c.getStatement(ctx, ticker, balanceSheetTypes)
}

func (c *Client) getStatement(ctx context.Context, ticker string, types []string) (*models.Statement, error) {
	path := fmt.Sprintf("/ws/fundamentals-timeseries/v1/finance/timeseries/%s", url.PathEscape(ticker))

	prefixed := make([]string, len(types))
	for i, t := range types {
		prefixed[i] = "annual" + t
	}

	now := c.now()
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("type", strings.Join(prefixed, ","))
	params.Set("period1", strconv.FormatInt(now.AddDate(-5, 0, 0).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))

	var resp timeseriesResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("fundamentals timeseries %s: %w", ticker, err)
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("fundamentals timeseries error: %s", resp.Timeseries.Error.Description)
	}

	return parseTimeseries(resp.Timeseries.Result), nil
}

type observation struct {
	asOf  time.Time
	value null.Float
}

// parseTimeseries builds a statement with one row per line item and columns
// aligned on reporting dates, most recent first.
func parseTimeseries(results []map[string]any) *models.Statement {
	stmt := models.NewStatement()
	series := make(map[string][]observation)
	dates := make(map[time.Time]struct{})

	for _, res := range results {
		typeName := resultType(res)
		if typeName == "" {
			continue
		}
		points, _ := res[typeName].([]any)
		label := SpaceLabel(strings.TrimPrefix(typeName, "annual"))
		for _, p := range points {
			point, ok := p.(map[string]any)
			if !ok {
				continue
			}
			asOf, err := time.Parse("2006-01-02", fmt.Sprint(point["asOfDate"]))
			if err != nil {
				continue
			}
			var val null.Float
			if rv, ok := point["reportedValue"].(map[string]any); ok {
				val = models.ToFloat(rv["raw"])
			}
			series[label] = append(series[label], observation{asOf: asOf, value: val})
			dates[asOf] = struct{}{}
		}
	}

	for d := range dates {
		stmt.Periods = append(stmt.Periods, d)
	}
	sort.Slice(stmt.Periods, func(i, j int) bool { return stmt.Periods[i].After(stmt.Periods[j]) })

	index := make(map[time.Time]int, len(stmt.Periods))
	for i, d := range stmt.Periods {
		index[d] = i
	}
	for label, obs := range series {
		row := make([]null.Float, len(stmt.Periods))
		for _, o := range obs {
			row[index[o.asOf]] = o.value
		}
		stmt.Rows[label] = row
	}
	return stmt
}

// resultType extracts meta.type[0] from a timeseries result.
func resultType(res map[string]any) string {
	meta, _ := res["meta"].(map[string]any)
	types, _ := meta["type"].([]any)
	if len(types) == 0 {
		return ""
	}
	s, _ := types[0].(string)
	return s
}

// SpaceLabel turns a CamelCase line item name into a spaced label
// ("TotalRevenue" -> "Total Revenue", "DilutedEPS" -> "Diluted EPS").
func SpaceLabel(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
