package collector

import (
	"context"

	"XAUCopilot/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns bars at the given interval ("1h") covering the lookback range ("1mo"),
	// oldest first.
	FetchBars(ctx context.Context, symbol, interval, lookback string) ([]model.Bar, error)
	Name() string
}
