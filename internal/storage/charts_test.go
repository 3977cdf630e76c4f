package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkcapital/autoanalyst/internal/common"
)

func TestChartCache_PutGetInvalidate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	cache, err := NewChartCache(common.NewSilentLogger(), &common.AreaConfig{Path: dir})
	require.NoError(t, err)

	got, err := cache.Get("AAPL_20240305_143009.json")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Put("AAPL_20240305_143009.json", []byte("png-bytes")))

	got, err = cache.Get("AAPL_20240305_143009.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), got)
	assert.FileExists(t, filepath.Join(dir, "AAPL_20240305_143009.png"))

	cache.Invalidate("AAPL_20240305_143009.json")
	got, err = cache.Get("AAPL_20240305_143009.json")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChartCache_SanitizesID(t *testing.T) {
	cache, err := NewChartCache(nil, &common.AreaConfig{Path: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, cache.Put("../escape.json", []byte("x")))
	assert.Equal(t, "__escape.png", chartName("../escape.json"))
}
