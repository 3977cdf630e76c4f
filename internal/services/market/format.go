package market

import (
	"fmt"
	"math"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// FormatLargeNumber renders a monetary amount with T/B/M suffixes.
// Missing values render as "N/A" and strings pass through unchanged.
func FormatLargeNumber(v any) string {
	var num float64
	switch n := v.(type) {
	case nil:
		return "N/A"
	case string:
		return n
	case null.Float:
		if !n.Valid {
			return "N/A"
		}
		num = n.Float64
	case *null.Float:
		if n == nil || !n.Valid {
			return "N/A"
		}
		num = n.Float64
	case float64:
		num = n
	default:
		f, ok := numericValue(v)
		if !ok {
			return fmt.Sprint(v)
		}
		num = f
	}

	if math.IsNaN(num) || math.IsInf(num, 0) {
		return "N/A"
	}

	switch {
	case num >= 1e12:
		return fmt.Sprintf("$%.2f T", num/1e12)
	case num >= 1e9:
		return fmt.Sprintf("$%.2f B", num/1e9)
	case num >= 1e6:
		return fmt.Sprintf("$%.2f M", num/1e6)
	default:
		return "$" + humanize.FormatFloat("#,###.##", num)
	}
}

// numericValue converts any integer or float kind, including named types, to float64.
func numericValue(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// FormatPercent renders a fraction (0.44) as a percentage ("44.0%").
// Zero is treated as missing.
func FormatPercent(f null.Float) string {
	if !models.Truthy(f) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", f.Float64*100)
}

// FormatRatio renders a multiple with two decimals. Zero is treated as missing.
func FormatRatio(f null.Float) string {
	if !models.Truthy(f) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", f.Float64)
}

// FormatValue renders a plain number with two decimals, or "N/A".
func FormatValue(f null.Float) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", f.Float64)
}

// FormatPrice renders a per-share price with its currency symbol.
func FormatPrice(f null.Float) string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", f.Float64)
}

// MetricCards builds the dashboard metric grid for a report.
func MetricCards(r *models.TickerReport) []models.MetricCard {
	if r == nil {
		return nil
	}
	return []models.MetricCard{
		{Label: "Fair Price (Analyst Target)", Value: FormatPrice(r.FairPrice), Note: "priemerný cieľ analytikov"},
		{Label: "Market Cap", Value: FormatLargeNumber(r.MarketCap)},
		{Label: "Total Revenue", Value: FormatLargeNumber(r.TotalRevenue)},
		{Label: "Gross Margin", Value: FormatPercent(r.GrossMargin)},
		{Label: "Operating Margin", Value: FormatPercent(r.OperatingMargin)},
		{Label: "EPS (GAAP)", Value: FormatValue(r.EPSGAAP)},
		{Label: "EPS (Non-GAAP / Fwd)", Value: FormatValue(r.EPSNonGAAP)},
		{Label: "P/E Ratio", Value: FormatRatio(r.PERatio)},
		{Label: "Forward P/E", Value: FormatRatio(r.ForwardPE)},
		{Label: "RPO (Deferred Revenue)", Value: r.RPOProxy, Note: "proxy z odloženého výnosu"},
		{Label: "Beta", Value: FormatRatio(r.Beta)},
	}
}

// FormatChange renders the daily move as a signed percentage.
func FormatChange(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}
