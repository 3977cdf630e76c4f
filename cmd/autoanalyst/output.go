package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jkcapital/autoanalyst/internal/models"
	"github.com/jkcapital/autoanalyst/internal/services/market"
)

// printDashboard renders an analysis for the terminal: header, metric grid,
// technicals and the AI report.
func printDashboard(w io.Writer, d *models.Dashboard) {
	if d == nil || d.Analysis == nil {
		return
	}
	a := d.Analysis

	if r := a.Report; r != nil {
		fmt.Fprintf(w, "%s (%s)\n", r.Name, a.Ticker)
		fmt.Fprintf(w, "%.2f %s  %s\n\n", r.CurrentPrice, r.Currency, d.Change)
	} else {
		fmt.Fprintf(w, "%s\n\n", a.Ticker)
	}

	if len(d.Cards) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, c := range d.Cards {
			fmt.Fprintf(tw, "%s\t%s\n", c.Label, c.Value)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if t := d.Technicals; t != nil {
		fmt.Fprintf(w, "52W range: %s - %s  SMA50: %s  SMA200: %s  RSI14: %s (%s)  Trend: %s\n\n",
			market.FormatValue(t.Low52Week), market.FormatValue(t.High52Week),
			market.FormatValue(t.SMA50), market.FormatValue(t.SMA200),
			market.FormatValue(t.RSI14), t.RSIState, t.Trend)
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, strings.TrimSpace(a.AIReport))

	if a.RecordID != "" {
		fmt.Fprintf(w, "\n[%s]\n", a.RecordID)
	}
}
