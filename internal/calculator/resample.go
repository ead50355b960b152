package calculator

import (
	"math"
	"sort"
	"time"

	"XAUCopilot/internal/model"
)

// Resample aggregates bars into fixed-width windows anchored at local midnight of
// the earliest bar's day. Windows keep their width across daylight-saving changes.
// open=first, high=max, low=min, close=last, skipping missing values. Windows left
// with a missing OHLC field are dropped.
func Resample(bars []model.Bar, window time.Duration) []model.Bar {
	if len(bars) == 0 || window <= 0 {
		return nil
	}
	sorted := make([]model.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	origin := Origin(sorted[0].Time)
	var out []model.Bar
	var cur model.Bar
	var curStart time.Time
	started := false

	flush := func() {
		if started && cur.Complete() {
			out = append(out, cur)
		}
	}

	for _, b := range sorted {
		start := WindowStart(origin, b.Time, window)
		if !started || !start.Equal(curStart) {
			flush()
			curStart = start
			cur = model.Bar{Time: start, Open: math.NaN(), High: math.NaN(), Low: math.NaN(), Close: math.NaN()}
			started = true
		}
		if math.IsNaN(cur.Open) && !math.IsNaN(b.Open) {
			cur.Open = b.Open
		}
		if !math.IsNaN(b.High) && (math.IsNaN(cur.High) || b.High > cur.High) {
			cur.High = b.High
		}
		if !math.IsNaN(b.Low) && (math.IsNaN(cur.Low) || b.Low < cur.Low) {
			cur.Low = b.Low
		}
		if !math.IsNaN(b.Close) {
			cur.Close = b.Close
		}
		if !math.IsNaN(b.Volume) {
			cur.Volume += b.Volume
		}
	}
	flush()
	return out
}

// Origin returns local midnight of t's day, the anchor of the first window.
func Origin(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WindowStart returns the start of the window containing t, counting whole
// windows of elapsed time from origin. The result is in t's location.
func WindowStart(origin, t time.Time, window time.Duration) time.Time {
	offset := t.Sub(origin)
	steps := offset / window
	if offset < 0 && offset%window != 0 {
		steps--
	}
	return origin.Add(steps * window).In(t.Location())
}
