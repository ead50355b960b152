package collector

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"XAUCopilot/internal/model"
)

func risingBars(n int, start time.Time) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 2000 + float64(i)*0.37 + 3*math.Sin(float64(i))
		bars[i] = model.Bar{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  c - 0.5,
			High:  c + 1.123,
			Low:   c - 1.456,
			Close: c,
		}
	}
	return bars
}

func TestCollect_ZeroBarsIsDataUnavailable(t *testing.T) {
	f := &MockFetcher{Bars: []model.Bar{}}
	c := NewCollector(f, "GC=F")

	table, err := c.Collect(context.Background())
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, 1, f.Calls)
}

func TestCollect_FetchErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	c := NewCollector(&MockFetcher{Err: boom}, "GC=F")

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDataUnavailable)
}

func TestCollect_TableShape(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	c := NewCollector(&MockFetcher{Bars: risingBars(24*20, start)}, "GC=F")

	table, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Rows, ReportRows)
	assert.Equal(t, "GC=F", table.Symbol)

	for i, r := range table.Rows {
		assert.True(t, r.RSIValid)
		assert.GreaterOrEqual(t, r.RSI, 0.0)
		assert.LessOrEqual(t, r.RSI, 100.0)
		for _, v := range []float64{r.Close, r.RSI, r.EMA50} {
			assert.InDelta(t, math.Round(v*100)/100, v, 1e-9)
		}
		if i > 0 {
			assert.True(t, r.Time.After(table.Rows[i-1].Time))
		}
	}
	last, ok := table.Latest()
	require.True(t, ok)
	assert.Equal(t, start.Add(119*4*time.Hour), last.Time)
	assert.Greater(t, table.RangeHigh, table.RangeLow)
}

func TestCompute_WarmupRowsExcluded(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	// 15 four-hour buckets: only buckets 13 and 14 have RSI.
	table, err := Compute("GC=F", risingBars(15*4, start))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestCompute_TooFewBucketsIsComputationError(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	// 13 four-hour buckets: RSI(14) is never defined.
	_, err := Compute("GC=F", risingBars(13*4, start))
	var ce *ComputationError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "not enough bars for RSI(14): 13 complete buckets")
}

func TestCompute_MonotonicClosesGiveRSI100(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 14)
	for i := range bars {
		c := float64(10 + i)
		bars[i] = model.Bar{Time: start.Add(time.Duration(i) * 4 * time.Hour), Open: c, High: c, Low: c, Close: c}
	}
	table, err := Compute("GC=F", bars)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 100.0, table.Rows[0].RSI)
	assert.Equal(t, 23.0, table.Rows[0].Close)
}

func TestCompute_AllIncompleteIsComputationError(t *testing.T) {
	nan := math.NaN()
	bars := []model.Bar{{Time: time.Now(), Open: 1, High: 1, Low: 1, Close: nan}}
	_, err := Compute("GC=F", bars)
	var ce *ComputationError
	require.ErrorAs(t, err, &ce)
}

func TestCompute_InfiniteCloseIsComputationError(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	bars := risingBars(24*5, start)
	bars[len(bars)-1].Close = math.Inf(1)
	_, err := Compute("GC=F", bars)
	var ce *ComputationError
	require.ErrorAs(t, err, &ce)
}

func TestIndicatorTable_String(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	table, err := Compute("GC=F", risingBars(24*20, start))
	require.NoError(t, err)

	lines := strings.Split(table.String(), "\n")
	require.Len(t, lines, ReportRows+1)
	assert.True(t, strings.HasPrefix(lines[0], "timestamp"))
	assert.True(t, strings.HasSuffix(lines[0], "EMA_50"))
	for _, l := range lines[1:] {
		fields := strings.Fields(l)
		// date, time+offset, close, rsi, ema
		require.Len(t, fields, 5)
		for _, f := range fields[2:] {
			dot := strings.Index(f, ".")
			require.NotEqual(t, -1, dot)
			assert.Len(t, f[dot+1:], 2)
		}
		assert.Equal(t, len(lines[0]), len(l))
	}
}

func TestMockFetcher_DefaultSeries(t *testing.T) {
	c := NewCollector(&MockFetcher{Price: 2650}, "GC=F")
	table, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Rows, ReportRows)
}
