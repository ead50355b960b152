package strategy

import (
	"fmt"

	"XAUCopilot/internal/calculator"
	"XAUCopilot/internal/model"
)

// RSI zone bounds.
const (
	OverboughtRSI = 70.0
	OversoldRSI   = 30.0
)

// classifyTrend compares the close with EMA_50.
func classifyTrend(row model.IndicatorRow) model.Trend {
	switch {
	case row.Close > row.EMA50:
		return model.TrendUp
	case row.Close < row.EMA50:
		return model.TrendDown
	default:
		return model.TrendFlat
	}
}

// classifyMomentum maps RSI to its zone. An undefined RSI is neutral.
func classifyMomentum(row model.IndicatorRow) model.Momentum {
	if !row.RSIValid {
		return model.MomentumNeutral
	}
	switch {
	case row.RSI > OverboughtRSI:
		return model.MomentumOverbought
	case row.RSI < OversoldRSI:
		return model.MomentumOversold
	default:
		return model.MomentumNeutral
	}
}

func trendCommentary(row model.IndicatorRow, trend model.Trend) string {
	if row.EMA50 == 0 {
		return "EMA_50 unavailable"
	}
	deviation := (row.Close - row.EMA50) / row.EMA50 * 100
	switch trend {
	case model.TrendUp:
		return fmt.Sprintf("Price %.2f above EMA_50 %.2f (%+.2f%%): uptrend, buy side", row.Close, row.EMA50, deviation)
	case model.TrendDown:
		return fmt.Sprintf("Price %.2f below EMA_50 %.2f (%+.2f%%): downtrend, sell side", row.Close, row.EMA50, deviation)
	default:
		return fmt.Sprintf("Price %.2f at EMA_50: no trend", row.Close)
	}
}

func momentumCommentary(row model.IndicatorRow, m model.Momentum) string {
	switch m {
	case model.MomentumOverbought:
		return fmt.Sprintf("RSI %.2f > %.0f: overbought", row.RSI, OverboughtRSI)
	case model.MomentumOversold:
		return fmt.Sprintf("RSI %.2f < %.0f: oversold", row.RSI, OversoldRSI)
	default:
		return fmt.Sprintf("RSI %.2f: neutral", row.RSI)
	}
}

// rangePosition places the close inside the table's high/low range.
func rangePosition(row model.IndicatorRow, table *model.IndicatorTable) (float64, bool) {
	if table.RangeHigh == 0 && table.RangeLow == 0 {
		return 0, false
	}
	pos, err := calculator.RangePosition(row.Close, table.RangeHigh, table.RangeLow)
	if err != nil {
		return 0, false
	}
	return pos, true
}
