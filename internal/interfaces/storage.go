package interfaces

import "github.com/jkcapital/autoanalyst/internal/models"

// HistoryStore persists analysis runs and retrieves prior ones
type HistoryStore interface {
	// Save normalizes data and writes {ticker, timestamp, data, ai_report}.
	// Returns the record id (the file name).
	Save(ticker string, data any, report string) (string, error)

	// List returns metadata for every readable record, newest first.
	// Unreadable records are skipped; List never fails.
	List() []models.HistoryEntry

	// Load reads a record by id. Returns nil, nil when the id does not exist.
	Load(id string) (*models.AnalysisRecord, error)
}
