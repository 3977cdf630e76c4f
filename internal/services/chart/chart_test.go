package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkcapital/autoanalyst/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func makeHistory(n int) models.PriceHistory {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	h := make(models.PriceHistory, n)
	for i := range h {
		c := 100 + float64(i%17)
		h[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, AdjClose: c}
	}
	return h
}

func TestRenderPriceChart(t *testing.T) {
	png, err := RenderPriceChart("AAPL", makeHistory(120))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderPriceChart_ShortHistoryWithoutOverlay(t *testing.T) {
	png, err := RenderPriceChart("AAPL", makeHistory(10))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderPriceChart_InsufficientData(t *testing.T) {
	_, err := RenderPriceChart("AAPL", makeHistory(1))
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = RenderPriceChart("AAPL", nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
