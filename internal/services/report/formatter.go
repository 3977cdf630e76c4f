package report

import (
	"fmt"
	"strings"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// FormatDocument assembles the downloadable markdown for an analysis: a header
// with price and move, the metric table, then the AI narrative.
func FormatDocument(a *models.Analysis, cards []models.MetricCard) string {
	var sb strings.Builder

	name := a.Ticker
	if a.Report != nil && a.Report.Name != "" {
		name = a.Report.Name
	}
	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", name, a.Ticker))

	if r := a.Report; r != nil {
		sb.WriteString(fmt.Sprintf("**Cena:** %.2f %s (%+.2f%%)\n\n", r.CurrentPrice, r.Currency, r.ChangePercent))
	}

	if len(cards) > 0 {
		sb.WriteString("| Metrika | Hodnota |\n")
		sb.WriteString("|---------|---------|\n")
		for _, c := range cards {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", c.Label, c.Value))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(a.AIReport))
	sb.WriteString("\n")

	return sb.String()
}

// DownloadName is the attachment file name for a ticker's report.
func DownloadName(ticker string) string {
	return fmt.Sprintf("%s_analyza.md", ticker)
}
