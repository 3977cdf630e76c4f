package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the fixed-width, zero-padded record timestamp format.
// Lexicographic order of formatted values equals chronological order.
const TimestampLayout = "20060102_150405"

// DisplayDateLayout is the human-readable date shown in history listings.
const DisplayDateLayout = "2006-01-02 15:04"

// AnalysisRecord is one persisted analysis run. Data holds whatever was saved,
// decoded generically; for analyses it is the normalized TickerReport with the
// price history stored as a sequence of row mappings.
type AnalysisRecord struct {
	Ticker    string `json:"ticker"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
	AIReport  string `json:"ai_report"`
}

// Fields returns Data as a mapping, or nil when the saved data was not an object.
func (r *AnalysisRecord) Fields() map[string]any {
	m, _ := r.Data.(map[string]any)
	return m
}

// Time parses the record timestamp.
func (r *AnalysisRecord) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
}

// Report reconstructs a typed TickerReport from the stored data, rebuilding
// the date-indexed price history from its row form.
func (r *AnalysisRecord) Report() (*TickerReport, error) {
	if r.Data == nil {
		return nil, fmt.Errorf("record %s_%s has no data", r.Ticker, r.Timestamp)
	}
	if _, ok := r.Data.(map[string]any); !ok {
		return nil, fmt.Errorf("record %s_%s data is %T, not a report", r.Ticker, r.Timestamp, r.Data)
	}
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record data: %w", err)
	}
	var report TickerReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode record data: %w", err)
	}
	if report.Currency == "" {
		report.Currency = "USD"
	}
	return &report, nil
}

// HistoryEntry is the listing metadata for a persisted record.
type HistoryEntry struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	Timestamp   string `json:"timestamp"`
	DisplayDate string `json:"date_display"`
}

// Analysis is a completed fetch + generate run, the "current analysis" shown
// by the presentation layer.
type Analysis struct {
	Ticker   string        `json:"ticker"`
	Report   *TickerReport `json:"data"`
	AIReport string        `json:"ai_report"`
	RecordID string        `json:"record_id,omitempty"`
}

// MetricCard is one labelled, display-formatted metric.
type MetricCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Note  string `json:"note,omitempty"`
}

// Dashboard is the presentation view of an analysis: the analysis itself,
// display-formatted metrics and a technical summary of the price history.
type Dashboard struct {
	Analysis   *Analysis    `json:"analysis"`
	Change     string       `json:"change"`
	Cards      []MetricCard `json:"cards"`
	Technicals *Technicals  `json:"technicals,omitempty"`
}
