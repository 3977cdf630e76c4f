// Package chart renders price charts for the dashboard.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jkcapital/autoanalyst/internal/models"
	"github.com/jkcapital/autoanalyst/internal/signals"
)

// ErrInsufficientData is returned when the history has fewer than two bars.
var ErrInsufficientData = errors.New("not enough price history to chart")

// overlayPeriod is the moving average drawn over the close series.
const overlayPeriod = 50

// RenderPriceChart renders a PNG line chart of daily closes for a ticker.
// Two series: Close (blue solid) and a 50-day SMA (gray dashed) when the
// history is long enough. Returns raw PNG bytes.
func RenderPriceChart(ticker string, history models.PriceHistory) ([]byte, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points, got %d", ErrInsufficientData, len(history))
	}

	dates, closes := history.Closes()

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.0,
			},
			XValues: dates,
			YValues: closes,
		},
	}

	if smaDates, smaValues := signals.MovingAverage(history, overlayPeriod); len(smaValues) >= 2 {
		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA %d", overlayPeriod),
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: smaDates,
			YValues: smaValues,
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s - 1 Year", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
