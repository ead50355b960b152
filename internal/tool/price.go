package tool

import (
	"context"
	"errors"
	"log"
	"time"

	"XAUCopilot/internal/collector"
	"XAUCopilot/internal/model"
)

// PriceTool exposes the indicator engine. The query is ignored.
type PriceTool struct {
	Collector *collector.Collector
	Observer  Observer
}

// NewPriceTool creates a price tool over the given collector.
func NewPriceTool(c *collector.Collector, o Observer) *PriceTool {
	return &PriceTool{Collector: c, Observer: o}
}

func (t *PriceTool) Name() string { return "XAUUSD 4H Price Fetcher" }

func (t *PriceTool) Description() string {
	return "Fetches Gold (XAU/USD) market data with RSI and EMA indicators."
}

// Invoke renders the indicator table as the payload.
func (t *PriceTool) Invoke(ctx context.Context, _ string) Result {
	start := time.Now()
	log.Printf("[Tool Log] Fetching 4H price data for %s from %s...", t.Collector.Symbol, t.Collector.Fetcher.Name())

	table, err := t.Collector.Collect(ctx)
	res := classifyPrice(table, err)
	if !res.OK() {
		log.Printf("[WARN] %s: %s", t.Name(), res.Render())
	}
	observe(t.Observer, "price", res, start)
	return res
}

func classifyPrice(table *model.IndicatorTable, err error) Result {
	var compErr *collector.ComputationError
	switch {
	case err == nil:
		return Result{Status: StatusOK, Text: table.String(), Table: table}
	case errors.Is(err, collector.ErrDataUnavailable):
		return Result{Status: StatusDataUnavailable, Err: err}
	case errors.As(err, &compErr):
		return Result{Status: StatusComputationError, Err: compErr}
	default:
		// Provider and transport failures render as processing errors.
		return Result{Status: StatusComputationError, Err: err}
	}
}
