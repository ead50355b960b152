package collector

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooChartJSON = `{
  "chart": {
    "result": [{
      "meta": {"exchangeTimezoneName": "UTC", "gmtoffset": 0},
      "timestamp": [1738580400, 1738576800, 1738584000, 1738587600],
      "indicators": {"quote": [{
        "open":   [2801.0, 2800.0, null, 2803.0],
        "high":   [2806.5, 2805.0, null, 2809.0],
        "low":    [2799.0, 2795.5, null, 2801.0],
        "close":  [2804.0, 2801.0, null, null],
        "volume": [120, 100, null, 90]
      }]}
    }],
    "error": null
  }
}`

func TestYahooFetcher_FetchBars(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/GC=F", r.URL.Path)
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yahooChartJSON))
	}))
	defer server.Close()

	f := NewYahooFetcher("")
	f.BaseURL = server.URL
	f.Client = server.Client()

	bars, err := f.FetchBars(context.Background(), "XAUUSD", "1h", "1mo")
	require.NoError(t, err)
	// all-null bar skipped; partial bar kept with NaN close
	require.Len(t, bars, 3)
	assert.Equal(t, int64(1738576800), bars[0].Time.Unix())
	assert.Equal(t, 2800.0, bars[0].Open)
	assert.Equal(t, 2804.0, bars[1].Close)
	assert.True(t, math.IsNaN(bars[2].Close))
	assert.Equal(t, "UTC", bars[0].Time.Location().String())
}

func TestYahooFetcher_EmptyResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer server.Close()

	f := NewYahooFetcher("")
	f.BaseURL = server.URL
	f.Client = server.Client()

	bars, err := f.FetchBars(context.Background(), "GC=F", "1h", "1mo")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooFetcher_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusTooManyRequests, "slow down"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			f := NewYahooFetcher("")
			f.BaseURL = server.URL
			f.Client = server.Client()

			_, err := f.FetchBars(context.Background(), "GC=F", "1h", "1mo")
			assert.Error(t, err)
		})
	}
}

func TestExchangeLocation(t *testing.T) {
	assert.Equal(t, "UTC", exchangeLocation("", 0).String())

	loc := exchangeLocation("Not/AZone", -18000)
	_, offset := time.Unix(1738580400, 0).In(loc).Zone()
	assert.Equal(t, -18000, offset)
}
