package tool

import (
	"context"
	"errors"
	"log"
	"time"

	"XAUCopilot/internal/news"
)

// NewsTool exposes the news adapter.
type NewsTool struct {
	Adapter  *news.Adapter
	Observer Observer
}

// NewNewsTool creates a news tool over the given adapter.
func NewNewsTool(a *news.Adapter, o Observer) *NewsTool {
	return &NewsTool{Adapter: a, Observer: o}
}

func (t *NewsTool) Name() string { return "DuckDuckGo News Search" }

func (t *NewsTool) Description() string {
	return "Search the web for current events and market sentiment."
}

// Invoke searches the past day for query.
func (t *NewsTool) Invoke(ctx context.Context, query string) Result {
	start := time.Now()
	log.Printf("[Tool Log] Searching DuckDuckGo (Past 24h) for: '%s'...", query)

	var res Result
	items, err := t.Adapter.Search(ctx, query)
	switch {
	case err != nil:
		res = Result{Status: StatusSearchError, Err: unwrapSearch(err)}
		log.Printf("[WARN] %s: %v", t.Name(), err)
	case len(items) == 0:
		res = Result{Status: StatusNoResults}
	default:
		res = Result{Status: StatusOK, Text: news.Render(items)}
	}
	observe(t.Observer, "news", res, start)
	return res
}

// unwrapSearch strips the adapter's query prefix so the rendered message
// carries the provider error only.
func unwrapSearch(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
