package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiAnalyst calls the Gemini generateContent endpoint.
type GeminiAnalyst struct {
	client      *genai.Client
	model       string
	temperature float64
}

// NewGeminiAnalyst creates an analyst on the Gemini API backend.
func NewGeminiAnalyst(ctx context.Context, opts Options) (*GeminiAnalyst, error) {
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiAnalyst{client: client, model: model, temperature: opts.Temperature}, nil
}

func (g *GeminiAnalyst) Name() string { return "gemini" }

// Complete sends the user prompt with the system prompt as system instruction.
func (g *GeminiAnalyst) Complete(ctx context.Context, system, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	if g.temperature > 0 {
		config.Temperature = genai.Ptr(float32(g.temperature))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), config)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}
