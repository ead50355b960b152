package crew

import (
	"fmt"
	"time"

	"XAUCopilot/internal/llm"
	"XAUCopilot/internal/strategy"
	"XAUCopilot/internal/tool"
)

// Options tune the XAU copilot crew.
type Options struct {
	// ExtraQueries are searched after the two default research queries.
	ExtraQueries []string
	// Reading appends the rule-based trend and momentum labels to the
	// technical task.
	Reading bool
}

// ResearchQueries returns the default news queries for the given date.
func ResearchQueries(date string) []string {
	return []string{
		fmt.Sprintf("Gold Price News %s", date),
		"Federal Reserve outlook",
	}
}

// NewXAUCopilot assembles the research and technical roles for a run dated now.
func NewXAUCopilot(opts Options, price, news tool.Tool, analyst llm.Analyst, now time.Time) *Crew {
	date := now.Format(DateLayout)

	research := &Role{
		Name: "Senior Market Research Manager",
		Goal: fmt.Sprintf("Determine the fundamental bias for Gold as of %s.", date),
		Backstory: fmt.Sprintf(`You are a veteran macro-economist.
Today is %s.
You STRICTLY check the dates of news articles.
If an article is not from %s or yesterday, IGNORE IT.
You analyze the Fed, Inflation, and Geopolitics.`, date, date),
		Tools: []tool.Tool{news},
	}

	technical := &Role{
		Name: "Lead Technical Analyst",
		Goal: "Analyze 4-Hour charts with Indicators to provide a Trade Setup.",
		Backstory: `You are a Quant Swing Trader.
Strategy:
1. Check Manager's Bias.
2. Trend: Price > EMA_50 (Up/Buy), Price < EMA_50 (Down/Sell).
3. Momentum: RSI > 70 (Overbought), RSI < 30 (Oversold).

Make a decision based on the DATA provided by the tool.`,
		Tools: []tool.Tool{price},
	}

	queries := append(ResearchQueries(date), opts.ExtraQueries...)
	researchCalls := make([]ToolCall, 0, len(queries))
	for _, q := range queries {
		researchCalls = append(researchCalls, ToolCall{Tool: news, Query: q})
	}

	researchTask := &Task{
		Name: "research",
		Description: fmt.Sprintf(`1. Search for "Gold Price News %s" and "Federal Reserve outlook".
2. Verify the news is actually recent (from the last 24-48 hours).
3. Decide: Is the Fundamental Sentiment BULLISH, BEARISH, or NEUTRAL?`, date),
		ExpectedOutput: "A brief Market Sentiment Report based ONLY on fresh news.",
		Role:           research,
		ToolCalls:      researchCalls,
	}

	analysisTask := &Task{
		Name: "analysis",
		Description: `1. Get the latest price and indicators.
2. Combine with Manager's sentiment.
3. Output the Trade Signal (Action, Entry, SL, TP).`,
		ExpectedOutput: "Final Trade Signal with Reasoning.",
		Role:           technical,
		ToolCalls:      []ToolCall{{Tool: price, Query: "XAUUSD 4H"}},
		Context:        []*Task{researchTask},
	}
	if opts.Reading {
		analysisTask.Annotate = annotateReading
	}

	return &Crew{
		Tasks:   []*Task{researchTask, analysisTask},
		Analyst: analyst,
		Date:    date,
	}
}

// annotateReading labels the latest bar of the first successful price result.
func annotateReading(results []tool.Result) string {
	for _, res := range results {
		if !res.OK() || res.Table == nil {
			continue
		}
		reading, err := strategy.ReadTable(res.Table)
		if err != nil {
			return ""
		}
		return reading.String()
	}
	return ""
}
