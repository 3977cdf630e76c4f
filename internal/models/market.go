// Package models defines data structures for autoanalyst
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Snapshot is the schema-less quote/info mapping returned by the market data
// provider. Keys follow the provider's camelCase naming (currentPrice, longName...).
type Snapshot map[string]any

// Has reports whether key is present with a non-nil value.
func (s Snapshot) Has(key string) bool {
	v, ok := s[key]
	return ok && v != nil
}

// Float returns the numeric value stored under key. Strings holding numbers are
// accepted; anything else (or NaN) yields an invalid null.Float.
func (s Snapshot) Float(key string) null.Float {
	v, ok := s[key]
	if !ok {
		return null.Float{}
	}
	return ToFloat(v)
}

// String returns the string value stored under key, or "" when absent.
func (s Snapshot) String(key string) string {
	switch v := s[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat converts a loosely typed provider value into a null.Float.
func ToFloat(v any) null.Float {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case null.Float:
		return n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return null.Float{}
		}
		f = parsed
	default:
		return null.Float{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// Truthy reports whether a value is present and non-zero.
func Truthy(f null.Float) bool {
	return f.Valid && f.Float64 != 0
}

// OrNA unwraps an optional value for display: the number when present, "N/A" otherwise.
func OrNA(f null.Float) any {
	if !f.Valid {
		return "N/A"
	}
	return f.Float64
}

// Statement is a financial statement series: one row per line item label and
// one column per reporting period, most recent period first.
type Statement struct {
	Periods []time.Time             `json:"periods"`
	Rows    map[string][]null.Float `json:"rows"`
}

// NewStatement creates an empty statement.
func NewStatement() *Statement {
	return &Statement{Rows: make(map[string][]null.Float)}
}

// Empty reports whether the statement carries no rows.
func (s *Statement) Empty() bool {
	return s == nil || len(s.Rows) == 0
}

// HasRow reports whether the statement contains a row with this exact label.
func (s *Statement) HasRow(label string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Rows[label]
	return ok
}

// Value returns the value of a row for a period column (0 = most recent).
func (s *Statement) Value(label string, col int) (null.Float, error) {
	row, ok := s.Rows[label]
	if !ok {
		return null.Float{}, fmt.Errorf("row %q not found", label)
	}
	if col < 0 || col >= len(row) {
		return null.Float{}, fmt.Errorf("row %q has no column %d (len %d)", label, col, len(row))
	}
	return row[col], nil
}

// PriceBar is a single daily OHLCV record. JSON keys match the row form
// persisted in history files, with the date index exposed as "Date".
type PriceBar struct {
	Date     time.Time `json:"Date"`
	Open     float64   `json:"Open"`
	High     float64   `json:"High"`
	Low      float64   `json:"Low"`
	Close    float64   `json:"Close"`
	AdjClose float64   `json:"Adj Close"`
	Volume   int64     `json:"Volume"`
}

// PriceHistory is a date-indexed table of daily bars, oldest first.
type PriceHistory []PriceBar

// Columns lists the table columns in record order, index first.
func (h PriceHistory) Columns() []string {
	return []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}
}

// Records converts the table into row mappings keyed by column name.
// The Date index is exposed as an ordinary column.
func (h PriceHistory) Records() []map[string]any {
	rows := make([]map[string]any, len(h))
	for i, b := range h {
		rows[i] = map[string]any{
			"Date":      b.Date,
			"Open":      b.Open,
			"High":      b.High,
			"Low":       b.Low,
			"Close":     b.Close,
			"Adj Close": b.AdjClose,
			"Volume":    b.Volume,
		}
	}
	return rows
}

// Closes returns the dates and close prices as parallel slices.
func (h PriceHistory) Closes() ([]time.Time, []float64) {
	dates := make([]time.Time, len(h))
	closes := make([]float64, len(h))
	for i, b := range h {
		dates[i] = b.Date
		closes[i] = b.Close
	}
	return dates, closes
}

// TickerReport is the normalized market data snapshot for one ticker.
type TickerReport struct {
	Name            string       `json:"name"`
	Symbol          string       `json:"symbol"`
	CurrentPrice    float64      `json:"current_price"`
	ChangePercent   float64      `json:"change_percent"`
	TotalRevenue    null.Float   `json:"total_revenue"`
	EPSGAAP         null.Float   `json:"eps_gaap"`
	EPSNonGAAP      null.Float   `json:"eps_non_gaap"`
	RPOProxy        string       `json:"rpo_proxy"`
	PERatio         null.Float   `json:"pe_ratio"`
	ForwardPE       null.Float   `json:"forward_pe"`
	FairPrice       null.Float   `json:"fair_price"`
	GrossMargin     null.Float   `json:"gross_margin"`
	OperatingMargin null.Float   `json:"operating_margin"`
	Beta            null.Float   `json:"beta"`
	MarketCap       null.Float   `json:"market_cap"`
	History         PriceHistory `json:"history"`
	Currency        string       `json:"currency"`
}

// Fields returns the report as an ordered-key mapping of typed values, the form
// handed to the history store for normalization.
func (r *TickerReport) Fields() map[string]any {
	return map[string]any{
		"name":             r.Name,
		"symbol":           r.Symbol,
		"current_price":    r.CurrentPrice,
		"change_percent":   r.ChangePercent,
		"total_revenue":    r.TotalRevenue,
		"eps_gaap":         r.EPSGAAP,
		"eps_non_gaap":     r.EPSNonGAAP,
		"rpo_proxy":        r.RPOProxy,
		"pe_ratio":         r.PERatio,
		"forward_pe":       r.ForwardPE,
		"fair_price":       r.FairPrice,
		"gross_margin":     r.GrossMargin,
		"operating_margin": r.OperatingMargin,
		"beta":             r.Beta,
		"market_cap":       r.MarketCap,
		"history":          r.History,
		"currency":         r.Currency,
	}
}

// FetchResult is the outcome of a market data fetch. Exactly one of Report
// and Error is set; callers must check Failed before using Report.
type FetchResult struct {
	Report *TickerReport `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Failed reports whether the fetch produced an error instead of a report.
func (r *FetchResult) Failed() bool {
	return r == nil || r.Report == nil || r.Error != ""
}

// FetchError builds a failed FetchResult.
func FetchError(msg string) *FetchResult {
	return &FetchResult{Error: msg}
}

// Technicals summarizes the price history for the dashboard.
type Technicals struct {
	High52Week null.Float `json:"high_52w"`
	Low52Week  null.Float `json:"low_52w"`
	SMA50      null.Float `json:"sma_50"`
	SMA200     null.Float `json:"sma_200"`
	RSI14      null.Float `json:"rsi_14"`
	RSIState   string     `json:"rsi_state"`
	Trend      string     `json:"trend"`
}
