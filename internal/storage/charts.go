package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jkcapital/autoanalyst/internal/common"
)

// ChartCache stores rendered PNG charts keyed by history record id.
type ChartCache struct {
	dir    string
	logger *common.Logger
}

// NewChartCache creates the chart directory if needed.
func NewChartCache(logger *common.Logger, config *common.AreaConfig) (*ChartCache, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	dir := config.Path
	if dir == "" {
		dir = "charts"
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &ChartCache{dir: dir, logger: logger}, nil
}

// chartName maps a record id to its PNG file name.
func chartName(recordID string) string {
	return sanitizeKey(strings.TrimSuffix(recordID, ".json")) + ".png"
}

// Get returns the cached chart for a record, or nil when not cached.
func (c *ChartCache) Get(recordID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, chartName(recordID)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read chart for %s: %w", recordID, err)
	}
	return data, nil
}

// Put stores a rendered chart for a record.
func (c *ChartCache) Put(recordID string, png []byte) error {
	if err := writeFileAtomic(c.dir, chartName(recordID), png); err != nil {
		return fmt.Errorf("failed to cache chart for %s: %w", recordID, err)
	}
	c.logger.Debug().Str("id", recordID).Int("bytes", len(png)).Msg("Chart cached")
	return nil
}

// Invalidate removes the cached chart for a record. Missing entries are ignored.
func (c *ChartCache) Invalidate(recordID string) {
	os.Remove(filepath.Join(c.dir, chartName(recordID)))
}
