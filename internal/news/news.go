// Package news queries a web search provider for recent headlines and renders
// them as plain-text records.
package news

import (
	"context"
	"fmt"
	"log"
	"strings"

	"XAUCopilot/internal/model"
)

const (
	// MaxResults caps the number of records per query.
	MaxResults = 3
	// PastDay restricts results to the last 24 hours.
	PastDay = "d"

	NoNewsMessage = "No news found in the last 24 hours. Assume Neutral."

	placeholderTitle   = "No Title"
	placeholderSnippet = "No snippet"
	placeholderDate    = "Unknown Date"
)

// Searcher is a keyword search provider.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, timeLimit string) ([]model.NewsItem, error)
	Name() string
}

// Adapter issues past-day searches and normalizes the records.
type Adapter struct {
	Searcher Searcher
}

// NewAdapter creates a new Adapter.
func NewAdapter(s Searcher) *Adapter {
	return &Adapter{Searcher: s}
}

// Search runs one query and fills placeholders for missing fields.
func (a *Adapter) Search(ctx context.Context, query string) ([]model.NewsItem, error) {
	log.Printf("[INFO] searching %s (past 24h) for: %q", a.Searcher.Name(), query)
	items, err := a.Searcher.Search(ctx, query, MaxResults, PastDay)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}
	out := make([]model.NewsItem, len(items))
	for i, it := range items {
		out[i] = normalize(it)
	}
	return out, nil
}

func normalize(it model.NewsItem) model.NewsItem {
	if strings.TrimSpace(it.Title) == "" {
		it.Title = placeholderTitle
	}
	if strings.TrimSpace(it.Snippet) == "" {
		it.Snippet = placeholderSnippet
	}
	if strings.TrimSpace(it.Date) == "" {
		it.Date = placeholderDate
	}
	return it
}

// Render formats records as NEWS TITLE/DATE/SNIPPET blocks separated by "---".
// An empty slice renders as NoNewsMessage.
func Render(items []model.NewsItem) string {
	if len(items) == 0 {
		return NoNewsMessage
	}
	records := make([]string, len(items))
	for i, it := range items {
		records[i] = fmt.Sprintf("NEWS TITLE: %s\nDATE: %s\nSNIPPET: %s\n---", it.Title, it.Date, it.Snippet)
	}
	return strings.Join(records, "\n")
}
