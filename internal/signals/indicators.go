// Package signals provides technical indicator calculations over daily price
// history. All functions expect bars ordered oldest first.
package signals

import (
	"math"
	"time"

	"github.com/guregu/null/v6"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// tradingYear is the number of daily bars in a 52 week window.
const tradingYear = 252

// Trend classifications
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// SMA calculates the Simple Moving Average of the latest period closes
func SMA(bars models.PriceHistory, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += b.Close
	}
	return sum / float64(period)
}

// MovingAverage returns the rolling SMA series, starting at the first bar with
// a full window.
func MovingAverage(bars models.PriceHistory, period int) ([]time.Time, []float64) {
	if period <= 0 || len(bars) < period {
		return nil, nil
	}

	dates := make([]time.Time, 0, len(bars)-period+1)
	values := make([]float64, 0, len(bars)-period+1)

	sum := 0.0
	for i, b := range bars {
		sum += b.Close
		if i >= period {
			sum -= bars[i-period].Close
		}
		if i >= period-1 {
			dates = append(dates, b.Date)
			values = append(values, sum/float64(period))
		}
	}
	return dates, values
}

// RSI calculates the Relative Strength Index over the latest period changes
func RSI(bars models.PriceHistory, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 50 // Neutral default
	}

	var gains, losses float64
	for i := len(bars) - period; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// lastYear returns the trailing 52 week window
func lastYear(bars models.PriceHistory) models.PriceHistory {
	if len(bars) > tradingYear {
		return bars[len(bars)-tradingYear:]
	}
	return bars
}

// High52Week returns the highest high in the last 252 trading days
func High52Week(bars models.PriceHistory) float64 {
	high := 0.0
	for _, b := range lastYear(bars) {
		if b.High > high {
			high = b.High
		}
	}
	return high
}

// Low52Week returns the lowest low in the last 252 trading days
func Low52Week(bars models.PriceHistory) float64 {
	low := math.MaxFloat64
	for _, b := range lastYear(bars) {
		if b.Low > 0 && b.Low < low {
			low = b.Low
		}
	}
	if low == math.MaxFloat64 {
		return 0
	}
	return low
}

// ClassifyRSI classifies RSI value
func ClassifyRSI(rsi float64) string {
	if rsi >= 70 {
		return "overbought"
	}
	if rsi <= 30 {
		return "oversold"
	}
	return "neutral"
}

// DetermineTrend classifies the overall trend
func DetermineTrend(currentPrice, sma50, sma200 float64) string {
	if sma50 == 0 || sma200 == 0 {
		return TrendNeutral
	}

	// BULLISH: Price > SMA200 AND SMA50 > SMA200
	if currentPrice > sma200 && sma50 > sma200 {
		return TrendBullish
	}

	// BEARISH: Price < SMA200 AND SMA50 < SMA200
	if currentPrice < sma200 && sma50 < sma200 {
		return TrendBearish
	}

	return TrendNeutral
}

// Summarize computes the dashboard technicals for a price history.
// Indicators without enough data are left invalid.
func Summarize(bars models.PriceHistory) *models.Technicals {
	t := &models.Technicals{
		RSIState: "neutral",
		Trend:    TrendNeutral,
	}
	if len(bars) == 0 {
		return t
	}

	last := bars[len(bars)-1].Close
	t.High52Week = positive(High52Week(bars))
	t.Low52Week = positive(Low52Week(bars))
	t.SMA50 = positive(SMA(bars, 50))
	t.SMA200 = positive(SMA(bars, 200))

	if len(bars) > 14 {
		rsi := RSI(bars, 14)
		t.RSI14 = null.FloatFrom(rsi)
		t.RSIState = ClassifyRSI(rsi)
	}

	t.Trend = DetermineTrend(last, t.SMA50.ValueOrZero(), t.SMA200.ValueOrZero())
	return t
}

func positive(v float64) null.Float {
	if v <= 0 {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
