// Package tool adapts the indicator engine and the news adapter to a named
// capability that maps a text query to a tagged result.
package tool

import (
	"context"
	"time"

	"XAUCopilot/internal/model"
	"XAUCopilot/internal/news"
)

// Tool is a named capability the orchestrator can invoke.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, query string) Result
}

// Status tags the outcome of a tool invocation.
type Status int

const (
	StatusOK Status = iota
	StatusDataUnavailable
	StatusComputationError
	StatusSearchError
	StatusNoResults
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDataUnavailable:
		return "data_unavailable"
	case StatusComputationError:
		return "computation_error"
	case StatusSearchError:
		return "search_error"
	case StatusNoResults:
		return "no_results"
	default:
		return "unknown"
	}
}

// Rendered messages for the non-OK statuses.
const (
	DataUnavailableMessage = "Error: Could not fetch data."
	computationPrefix      = "Error processing data: "
	searchPrefix           = "Search Error: "
)

// Result is the outcome of one invocation. Text holds the payload on success;
// Err holds the cause for the error statuses. Table is set by the price tool
// on success.
type Result struct {
	Status Status
	Text   string
	Err    error
	Table  *model.IndicatorTable
}

// OK reports whether the invocation produced a payload.
func (r Result) OK() bool { return r.Status == StatusOK }

// Render returns the text handed to the analyst and shown to users.
func (r Result) Render() string {
	switch r.Status {
	case StatusOK:
		return r.Text
	case StatusDataUnavailable:
		return DataUnavailableMessage
	case StatusComputationError:
		return computationPrefix + errText(r.Err)
	case StatusSearchError:
		return searchPrefix + errText(r.Err)
	case StatusNoResults:
		return news.NoNewsMessage
	default:
		return r.Text
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Observer receives one call per invocation.
type Observer interface {
	ObserveTool(tool, status string, d time.Duration)
}

func observe(o Observer, name string, res Result, start time.Time) {
	if o == nil {
		return
	}
	o.ObserveTool(name, res.Status.String(), time.Since(start))
}
