package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIAnalyst calls the chat completions endpoint.
type OpenAIAnalyst struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAIAnalyst creates an analyst from opts. Extra request options are
// appended after the ones derived from opts.
func NewOpenAIAnalyst(opts Options, extra ...option.RequestOption) *OpenAIAnalyst {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	reqOpts = append(reqOpts, extra...)

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIAnalyst{
		client:      openai.NewClient(reqOpts...),
		model:       model,
		temperature: opts.Temperature,
	}
}

func (a *OpenAIAnalyst) Name() string { return "openai" }

// Complete sends a two-message conversation and returns the first choice.
func (a *OpenAIAnalyst) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if a.temperature > 0 {
		params.Temperature = openai.Float(a.temperature)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai chat completion: empty content")
	}
	return content, nil
}
