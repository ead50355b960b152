package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Bar represents a single OHLC observation. Missing fields are NaN.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Complete reports whether all four OHLC fields are present.
func (b Bar) Complete() bool {
	return !math.IsNaN(b.Open) && !math.IsNaN(b.High) && !math.IsNaN(b.Low) && !math.IsNaN(b.Close)
}

// IndicatorRow is one resampled bar with its indicator values.
type IndicatorRow struct {
	Time     time.Time
	Close    float64
	RSI      float64
	RSIValid bool
	EMA50    float64
}

// TimeLayout is how indicator timestamps are rendered.
const TimeLayout = "2006-01-02 15:04:05-07:00"

// IndicatorTable holds the most recent complete indicator rows, oldest first.
type IndicatorTable struct {
	Symbol string
	Rows   []IndicatorRow

	// High/low of the bars behind Rows; not part of the rendered table.
	RangeHigh float64
	RangeLow  float64
}

// Latest returns the most recent row.
func (t *IndicatorTable) Latest() (IndicatorRow, bool) {
	if t == nil || len(t.Rows) == 0 {
		return IndicatorRow{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// String renders the table with right-aligned fixed-width columns.
func (t *IndicatorTable) String() string {
	header := []string{"timestamp", "Close", "RSI", "EMA_50"}
	cells := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		cells = append(cells, []string{
			r.Time.Format(TimeLayout),
			fmt.Sprintf("%.2f", r.Close),
			fmt.Sprintf("%.2f", r.RSI),
			fmt.Sprintf("%.2f", r.EMA50),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	var b strings.Builder
	writeLine := func(row []string) {
		for i, c := range row {
			if i == 0 {
				b.WriteString(fmt.Sprintf("%-*s", widths[i], c))
				continue
			}
			b.WriteString(fmt.Sprintf("  %*s", widths[i], c))
		}
		b.WriteString("\n")
	}
	writeLine(header)
	for _, row := range cells {
		writeLine(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewsItem is one normalized search result.
type NewsItem struct {
	Title   string
	Date    string
	Snippet string
	URL     string
}
