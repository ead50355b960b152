package calculator

import "errors"

// EMASeries computes the exponential moving average with alpha = 2/(span+1),
// seeded by the first close and without bias adjustment.
func EMASeries(closes []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	if len(closes) == 0 {
		return nil, nil
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = out[i-1] + alpha*(closes[i]-out[i-1])
	}
	return out, nil
}
