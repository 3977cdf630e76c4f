package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteSummaryJSON = `{"quoteSummary":{"result":[{
  "price":{"symbol":"AAPL","longName":"Apple Inc.","currency":"USD","regularMarketPrice":{"raw":151.5,"fmt":"151.50"},"marketCap":{"raw":2400000000000,"fmt":"2.4T"}},
  "summaryDetail":{"previousClose":{"raw":100.0,"fmt":"100.00"},"trailingPE":{"raw":25.1,"fmt":"25.10"},"beta":{"raw":1.2,"fmt":"1.20"},"forwardPE":{}},
  "financialData":{"currentPrice":{"raw":150.0,"fmt":"150.00"},"targetMeanPrice":{"raw":180.0,"fmt":"180.00"},"grossMargins":{"raw":0.44,"fmt":"44%"}},
  "defaultKeyStatistics":{"trailingEps":{"raw":6.1,"fmt":"6.10"},"forwardEps":{"raw":6.9,"fmt":"6.90"},"forwardPE":{"raw":22.0,"fmt":"22.00"}}
}],"error":null}}`

const timeseriesJSON = `{"timeseries":{"result":[
  {"meta":{"symbol":["AAPL"],"type":["annualTotalRevenue"]},"timestamp":[1664496000,1696032000],
   "annualTotalRevenue":[
     {"asOfDate":"2022-09-30","periodType":"12M","reportedValue":{"raw":394328000000,"fmt":"394.33B"}},
     {"asOfDate":"2023-09-30","periodType":"12M","reportedValue":{"raw":383285000000,"fmt":"383.29B"}}]},
  {"meta":{"symbol":["AAPL"],"type":["annualCurrentDeferredRevenue"]},"timestamp":[1696032000],
   "annualCurrentDeferredRevenue":[null,{"asOfDate":"2023-09-30","periodType":"12M","reportedValue":{"raw":8061000000,"fmt":"8.06B"}}]},
  {"meta":{"symbol":["AAPL"],"type":["annualEBITDA"]}}
],"error":null}}`

const chartJSON = `{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD"},
  "timestamp":[1700092800,1700006400,1700179200],
  "indicators":{"quote":[{"open":[2.0,1.0,null],"high":[2.5,1.5,null],"low":[1.8,0.9,null],"close":[2.2,1.2,null],"volume":[200,100,null]}],
  "adjclose":[{"adjclose":[2.1,1.1,null]}]}}],"error":null}}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		WithBaseURL(srv.URL),
		WithCookieURL(""),
		WithRateLimit(1000),
		WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func TestGetSnapshot_FlattensModules(t *testing.T) {
	var gotCrumb, gotModules string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/test/getcrumb":
			w.Write([]byte("abc123"))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/AAPL"):
			gotCrumb = r.URL.Query().Get("crumb")
			gotModules = r.URL.Query().Get("modules")
			w.Write([]byte(quoteSummaryJSON))
		default:
			http.NotFound(w, r)
		}
	})

	snap, err := client.GetSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "abc123", gotCrumb)
	assert.Contains(t, gotModules, "financialData")
	assert.Equal(t, "AAPL", snap.String("symbol"))
	assert.Equal(t, "Apple Inc.", snap.String("longName"))
	assert.Equal(t, 150.0, snap.Float("currentPrice").Float64)
	assert.Equal(t, 151.5, snap.Float("regularMarketPrice").Float64)
	assert.Equal(t, 100.0, snap.Float("previousClose").Float64)
	assert.Equal(t, 6.1, snap.Float("trailingEps").Float64)
	// Empty formatted value in summaryDetail is dropped, later module fills it
	assert.Equal(t, 22.0, snap.Float("forwardPE").Float64)
	assert.False(t, snap.Has("operatingMargins"))
}

func TestGetSnapshot_NotFoundIsEmpty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for symbol: ZZZZ"}}}`))
	})

	snap, err := client.GetSnapshot(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestGetSnapshot_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	_, err := client.GetSnapshot(context.Background(), "AAPL")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "status: 500")
}

func TestGetIncomeStatement_AlignsColumns(t *testing.T) {
	var gotTypes string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/fundamentals-timeseries/") {
			gotTypes = r.URL.Query().Get("type")
			w.Write([]byte(timeseriesJSON))
			return
		}
		http.NotFound(w, r)
	})

	stmt, err := client.GetIncomeStatement(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Contains(t, gotTypes, "annualTotalRevenue")
	require.Len(t, stmt.Periods, 2)
	assert.True(t, stmt.Periods[0].After(stmt.Periods[1]), "most recent period first")

	latest, err := stmt.Value("Total Revenue", 0)
	require.NoError(t, err)
	assert.Equal(t, 383285000000.0, latest.Float64)

	deferred, err := stmt.Value("Current Deferred Revenue", 0)
	require.NoError(t, err)
	assert.Equal(t, 8061000000.0, deferred.Float64)

	older, err := stmt.Value("Current Deferred Revenue", 1)
	require.NoError(t, err)
	assert.False(t, older.Valid)

	assert.False(t, stmt.HasRow("EBITDA"))
}

func TestGetPriceHistory_SortsAndSkipsNulls(t *testing.T) {
	var gotRange string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL") {
			gotRange = r.URL.Query().Get("range")
			w.Write([]byte(chartJSON))
			return
		}
		http.NotFound(w, r)
	})

	bars, err := client.GetPriceHistory(context.Background(), "AAPL", "1y")
	require.NoError(t, err)

	assert.Equal(t, "1y", gotRange)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.2, bars[0].Close)
	assert.Equal(t, 1.1, bars[0].AdjClose)
	assert.Equal(t, int64(100), bars[0].Volume)
	assert.Equal(t, 2.2, bars[1].Close)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
}

func TestSpaceLabel(t *testing.T) {
	cases := map[string]string{
		"TotalRevenue":           "Total Revenue",
		"DilutedEPS":             "Diluted EPS",
		"EBITDA":                 "EBITDA",
		"CurrentDeferredRevenue": "Current Deferred Revenue",
		"Revenue":                "Revenue",
	}
	for in, want := range cases {
		assert.Equal(t, want, SpaceLabel(in), in)
	}
}
