package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jkcapital/autoanalyst/internal/models"
)

func TestFormatDocument(t *testing.T) {
	a := &models.Analysis{
		Ticker: "AAPL",
		Report: &models.TickerReport{
			Name:          "Apple Inc.",
			CurrentPrice:  189.5,
			ChangePercent: -1.25,
			Currency:      "USD",
		},
		AIReport: "## 🏢 O spoločnosti\n\nText.\n",
	}
	cards := []models.MetricCard{{Label: "Beta", Value: "1.20"}}

	doc := FormatDocument(a, cards)

	assert.Contains(t, doc, "# Apple Inc. (AAPL)")
	assert.Contains(t, doc, "**Cena:** 189.50 USD (-1.25%)")
	assert.Contains(t, doc, "| Beta | 1.20 |")
	assert.Contains(t, doc, "## 🏢 O spoločnosti\n\nText.\n")
}

func TestFormatDocument_NoReport(t *testing.T) {
	doc := FormatDocument(&models.Analysis{Ticker: "X", AIReport: "Chyba"}, nil)
	assert.Equal(t, "# X (X)\n\n---\n\nChyba\n", doc)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "TSLA_analyza.md", DownloadName("TSLA"))
}
