package calculator

import (
	"errors"
	"math"

	"XAUCopilot/internal/model"
)

// RSISeries computes RSI over a trailing simple-mean window of gains and losses.
// The first delta has no prior close and counts as zero, so values are defined from
// index period-1. When the window has no losses the RSI is 100; when it has neither
// gains nor losses the value is undefined and valid[i] is false.
func RSISeries(closes []float64, period int) (values []float64, valid []bool, err error) {
	if period <= 0 {
		return nil, nil, errors.New("period must be positive")
	}
	values = make([]float64, len(closes))
	valid = make([]bool, len(closes))

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	for i := range closes {
		if i < period-1 {
			values[i] = math.NaN()
			continue
		}
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			values[i] = math.NaN()
		case avgLoss == 0:
			values[i] = 100.0
			valid[i] = true
		default:
			rs := avgGain / avgLoss
			values[i] = 100.0 - 100.0/(1.0+rs)
			valid[i] = true
		}
	}
	return values, valid, nil
}

// Closes returns the close of every bar, in order.
func Closes(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
