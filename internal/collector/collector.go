package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"XAUCopilot/internal/calculator"
	"XAUCopilot/internal/model"
)

// Fixed sampling parameters of the indicator report.
const (
	Lookback     = "1mo"
	BaseInterval = "1h"
	BucketSize   = 4 * time.Hour
	RSIPeriod    = 14
	EMASpan      = 50
	ReportRows   = 12
)

// ErrDataUnavailable is returned when the provider returns no bars.
var ErrDataUnavailable = errors.New("market data unavailable")

// ComputationError wraps any failure while resampling or computing indicators.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string { return e.Err.Error() }

func (e *ComputationError) Unwrap() error { return e.Err }

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.Bar
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _, _, _ string) ([]model.Bar, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, 24*22), nil
}

// generateMockBars produces a gently oscillating hourly series ending at the current hour.
func generateMockBars(basePrice float64, count int) []model.Bar {
	end := time.Now().UTC().Truncate(time.Hour)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.004*math.Sin(float64(i)/9) + float64(i-count/2)*0.00005)
		bars[i] = model.Bar{
			Time:   end.Add(-time.Duration(count-1-i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.002,
			Low:    p * 0.997,
			Close:  p,
			Volume: 1000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol}
}

// Collect fetches hourly bars, resamples them into 4-hour buckets and returns the
// most recent rows with RSI(14) and EMA(50).
func (c *Collector) Collect(ctx context.Context) (*model.IndicatorTable, error) {
	log.Printf("[INFO] fetching %s bars for %s from %s (%s)", BaseInterval, c.Symbol, c.Fetcher.Name(), Lookback)
	bars, err := c.Fetcher.FetchBars(ctx, c.Symbol, BaseInterval, Lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, ErrDataUnavailable
	}
	return Compute(c.Symbol, bars)
}

// Compute runs the resample and indicator passes over raw bars.
func Compute(symbol string, bars []model.Bar) (table *model.IndicatorTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = &ComputationError{Err: fmt.Errorf("%v", r)}
		}
	}()

	resampled := calculator.Resample(bars, BucketSize)
	if len(resampled) == 0 {
		return nil, &ComputationError{Err: errors.New("no complete bars after resampling")}
	}

	closes := calculator.Closes(resampled)
	rsi, rsiValid, err := calculator.RSISeries(closes, RSIPeriod)
	if err != nil {
		return nil, &ComputationError{Err: fmt.Errorf("rsi: %w", err)}
	}
	ema, err := calculator.EMASeries(closes, EMASpan)
	if err != nil {
		return nil, &ComputationError{Err: fmt.Errorf("ema: %w", err)}
	}

	rows := make([]model.IndicatorRow, 0, len(resampled))
	kept := make([]model.Bar, 0, len(resampled))
	for i, b := range resampled {
		if !rsiValid[i] {
			continue
		}
		if !finite(b.Close) || !finite(rsi[i]) || !finite(ema[i]) {
			return nil, &ComputationError{Err: fmt.Errorf("non-finite value at %s", b.Time.Format(model.TimeLayout))}
		}
		rows = append(rows, model.IndicatorRow{
			Time:     b.Time,
			Close:    round2(b.Close),
			RSI:      round2(rsi[i]),
			RSIValid: true,
			EMA50:    round2(ema[i]),
		})
		kept = append(kept, b)
	}
	if len(rows) == 0 {
		return nil, &ComputationError{Err: fmt.Errorf("not enough bars for RSI(%d): %d complete buckets", RSIPeriod, len(resampled))}
	}
	if len(rows) > ReportRows {
		rows = rows[len(rows)-ReportRows:]
		kept = kept[len(kept)-ReportRows:]
	}

	table = &model.IndicatorTable{Symbol: symbol, Rows: rows}
	if high, low, err := calculator.CalculateRange(kept, ReportRows); err != nil {
		log.Printf("[WARN] range calculation failed: %v", err)
	} else {
		table.RangeHigh = round2(high)
		table.RangeLow = round2(low)
	}
	return table, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
