package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"XAUCopilot/internal/model"
)

func row(close, rsi, ema float64) model.IndicatorRow {
	return model.IndicatorRow{
		Time:     time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC),
		Close:    close,
		RSI:      rsi,
		RSIValid: true,
		EMA50:    ema,
	}
}

func TestRead_Trend(t *testing.T) {
	tests := []struct {
		name  string
		close float64
		ema   float64
		want  model.Trend
	}{
		{"above ema", 2660, 2640, model.TrendUp},
		{"below ema", 2620, 2640, model.TrendDown},
		{"at ema", 2640, 2640, model.TrendFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Read(row(tt.close, 50, tt.ema)).Trend)
		})
	}
}

func TestRead_Momentum(t *testing.T) {
	tests := []struct {
		rsi  float64
		want model.Momentum
	}{
		{85, model.MomentumOverbought},
		{70.01, model.MomentumOverbought},
		{70, model.MomentumNeutral},
		{50, model.MomentumNeutral},
		{30, model.MomentumNeutral},
		{29.99, model.MomentumOversold},
		{5, model.MomentumOversold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Read(row(2650, tt.rsi, 2640)).Momentum, "rsi=%.2f", tt.rsi)
	}
}

func TestRead_InvalidRSIIsNeutral(t *testing.T) {
	r := row(2650, 95, 2640)
	r.RSIValid = false
	assert.Equal(t, model.MomentumNeutral, Read(r).Momentum)
}

func TestRead_Commentary(t *testing.T) {
	reading := Read(row(2660, 75, 2640))
	require.Len(t, reading.Commentary, 2)
	assert.Contains(t, reading.Commentary[0], "above EMA_50")
	assert.Contains(t, reading.Commentary[1], "overbought")
}

func TestReadTable(t *testing.T) {
	table := &model.IndicatorTable{
		Rows:      []model.IndicatorRow{row(2600, 40, 2610), row(2650, 55, 2620)},
		RangeHigh: 2700,
		RangeLow:  2600,
	}
	reading, err := ReadTable(table)
	require.NoError(t, err)
	assert.Equal(t, model.TrendUp, reading.Trend)
	assert.True(t, reading.HasRange)
	assert.InDelta(t, 0.5, reading.RangePosition, 1e-9)
	assert.Contains(t, reading.String(), "Trend: UP")
	assert.Contains(t, reading.String(), "Momentum: NEUTRAL")
}

func TestReadTable_Empty(t *testing.T) {
	_, err := ReadTable(&model.IndicatorTable{})
	assert.Error(t, err)
}
