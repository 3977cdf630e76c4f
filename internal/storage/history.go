package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/interfaces"
	"github.com/jkcapital/autoanalyst/internal/models"
)

// ErrInvalidID is returned for record ids that do not name a file in the store.
var ErrInvalidID = errors.New("invalid record id")

// HistoryStore keeps one JSON file per analysis run in a flat directory.
// Record ids are the file names: "{ticker}_{YYYYMMDD_HHMMSS}.json".
type HistoryStore struct {
	dir    string
	logger *common.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// HistoryOption configures a HistoryStore
type HistoryOption func(*HistoryStore)

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) HistoryOption {
	return func(s *HistoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// historyFile is the on-disk record layout. Field order is the key order
// written to disk.
type historyFile struct {
	Ticker    string `json:"ticker"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
	AIReport  string `json:"ai_report"`
}

// NewHistoryStore creates the history directory if needed and returns a store over it.
func NewHistoryStore(logger *common.Logger, config *common.AreaConfig, opts ...HistoryOption) (*HistoryStore, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	dir := config.Path
	if dir == "" {
		dir = "history"
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	s := &HistoryStore{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Debug().Str("path", dir).Msg("History store opened")
	return s, nil
}

// Dir returns the directory holding history records.
func (s *HistoryStore) Dir() string {
	return s.dir
}

// Save writes a record and returns its id. Two saves for the same ticker
// within one second share an id; the later one replaces the earlier.
func (s *HistoryStore) Save(ticker string, data any, report string) (string, error) {
	timestamp := s.now().Format(models.TimestampLayout)
	id := fmt.Sprintf("%s_%s.json", sanitizeKey(ticker), timestamp)

	payload := historyFile{
		Ticker:    ticker,
		Timestamp: timestamp,
		Data:      normalize(data),
		AIReport:  report,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("failed to marshal record %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.dir, id, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to save record %s: %w", id, err)
	}

	s.logger.Info().Str("ticker", ticker).Str("id", id).Msg("Analysis saved")
	return id, nil
}

// List returns metadata for every readable record, newest first.
// Files that cannot be read or whose timestamp does not parse are skipped.
func (s *HistoryStore) List() []models.HistoryEntry {
	names, err := listFiles(s.dir, ".json")
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.dir).Msg("Failed to list history")
		return []models.HistoryEntry{}
	}

	entries := make([]models.HistoryEntry, 0, len(names))
	for _, name := range names {
		entry, err := s.readEntry(name)
		if err != nil {
			s.logger.Debug().Err(err).Str("id", name).Msg("Skipping unreadable history record")
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp > entries[j].Timestamp
		}
		return entries[i].ID < entries[j].ID
	})

	return entries
}

// readEntry extracts listing metadata from one record file.
func (s *HistoryStore) readEntry(name string) (models.HistoryEntry, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return models.HistoryEntry{}, err
	}

	var meta struct {
		Ticker    string `json:"ticker"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return models.HistoryEntry{}, err
	}

	ts, err := time.Parse(models.TimestampLayout, meta.Timestamp)
	if err != nil {
		return models.HistoryEntry{}, fmt.Errorf("bad timestamp %q: %w", meta.Timestamp, err)
	}

	return models.HistoryEntry{
		ID:          name,
		Ticker:      meta.Ticker,
		Timestamp:   meta.Timestamp,
		DisplayDate: ts.Format(models.DisplayDateLayout),
	}, nil
}

// Load reads a record by id. A missing record returns nil, nil.
func (s *HistoryStore) Load(id string) (*models.AnalysisRecord, error) {
	if !validName(id) {
		return nil, fmt.Errorf("%w %q", ErrInvalidID, id)
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read record %s: %w", id, err)
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", id, err)
	}
	return &record, nil
}

// Ensure HistoryStore implements HistoryStore
var _ interfaces.HistoryStore = (*HistoryStore)(nil)
