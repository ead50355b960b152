package model

import "time"

// Trend is the price position relative to EMA_50.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
)

// Momentum is the RSI zone.
type Momentum string

const (
	MomentumOverbought Momentum = "OVERBOUGHT"
	MomentumOversold   Momentum = "OVERSOLD"
	MomentumNeutral    Momentum = "NEUTRAL"
)

// TaskOutput is the text produced by one crew task.
type TaskOutput struct {
	Role   string
	Task   string
	Output string
}

// Recommendation is the result of one full pipeline run.
type Recommendation struct {
	RunID      string
	Date       string
	Tasks      []TaskOutput
	Final      string
	StartedAt  time.Time
	FinishedAt time.Time
}
