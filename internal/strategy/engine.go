// Package strategy labels the latest indicator row with the published trend
// and momentum rules. It never decides a trade.
package strategy

import (
	"errors"
	"fmt"
	"strings"

	"XAUCopilot/internal/model"
)

// Reading is the rule-based classification of one indicator row.
type Reading struct {
	Time       string
	Close      float64
	Trend      model.Trend
	Momentum   model.Momentum
	Commentary []string

	// Position of Close within the 12-row high/low range, 0..1.
	RangePosition float64
	HasRange      bool
}

// Read classifies a single row.
func Read(row model.IndicatorRow) Reading {
	trend := classifyTrend(row)
	momentum := classifyMomentum(row)
	return Reading{
		Time:     row.Time.Format(model.TimeLayout),
		Close:    row.Close,
		Trend:    trend,
		Momentum: momentum,
		Commentary: []string{
			trendCommentary(row, trend),
			momentumCommentary(row, momentum),
		},
	}
}

// ReadTable classifies the latest row of table and adds its range position.
func ReadTable(table *model.IndicatorTable) (Reading, error) {
	row, ok := table.Latest()
	if !ok {
		return Reading{}, errors.New("indicator table is empty")
	}
	r := Read(row)
	if pos, ok := rangePosition(row, table); ok {
		r.RangePosition = pos
		r.HasRange = true
		r.Commentary = append(r.Commentary, fmt.Sprintf("Close sits at %.0f%% of the %.2f-%.2f range", pos*100, table.RangeLow, table.RangeHigh))
	}
	return r, nil
}

// String renders the reading as plain facts.
func (r Reading) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Latest bar %s close %.2f\n", r.Time, r.Close)
	fmt.Fprintf(&b, "Trend: %s\nMomentum: %s", r.Trend, r.Momentum)
	for _, c := range r.Commentary {
		b.WriteString("\n- ")
		b.WriteString(c)
	}
	return b.String()
}
