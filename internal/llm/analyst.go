// Package llm adapts hosted language models to the Analyst capability used by
// the crew.
package llm

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Analyst maps a system prompt and a user prompt to a completion.
type Analyst interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Options configure an analyst.
type Options struct {
	Provider    string // openai | gemini
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}

// New builds the analyst for opts.Provider.
func New(ctx context.Context, opts Options) (Analyst, error) {
	switch opts.Provider {
	case "openai", "":
		return NewOpenAIAnalyst(opts), nil
	case "gemini":
		return NewGeminiAnalyst(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// Observer receives one call per completion.
type Observer interface {
	ObserveLLM(provider string, d time.Duration, err error)
}

// Instrumented wraps an Analyst with logging and an Observer.
type Instrumented struct {
	Analyst  Analyst
	Observer Observer
}

func (i *Instrumented) Name() string { return i.Analyst.Name() }

func (i *Instrumented) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	out, err := i.Analyst.Complete(ctx, system, user)
	d := time.Since(start)
	if i.Observer != nil {
		i.Observer.ObserveLLM(i.Analyst.Name(), d, err)
	}
	if err != nil {
		log.Printf("[ERROR] %s completion failed after %s: %v", i.Analyst.Name(), d.Round(time.Millisecond), err)
		return "", err
	}
	log.Printf("[INFO] %s completion: %d chars in %s", i.Analyst.Name(), len(out), d.Round(time.Millisecond))
	return out, nil
}
