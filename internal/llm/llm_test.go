package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatCompletionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1738560000,
  "model": "gpt-4o-mini",
  "choices": [
    {"index": 0, "finish_reason": "stop",
     "message": {"role": "assistant", "content": "  Action: BUY\nEntry: 2650  "}}
  ]
}`

func TestOpenAIAnalyst_Complete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionBody))
	}))
	defer server.Close()

	a := NewOpenAIAnalyst(Options{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	out, err := a.Complete(context.Background(), "You are a trader.", "Give a signal.")
	require.NoError(t, err)
	assert.Equal(t, "Action: BUY\nEntry: 2650", out)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a trader.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Give a signal.", got.Messages[1].Content)
}

func TestOpenAIAnalyst_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	a := NewOpenAIAnalyst(Options{APIKey: "bad", BaseURL: server.URL + "/v1/"}, option.WithMaxRetries(0))
	_, err := a.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai chat completion")
}

func TestOpenAIAnalyst_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer server.Close()

	a := NewOpenAIAnalyst(Options{APIKey: "k", BaseURL: server.URL + "/v1/"})
	_, err := a.Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "no choices")
}

func TestGeminiAnalyst_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Give a signal.")
		assert.Contains(t, string(body), "You are a trader.")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Action: SELL"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	a, err := NewGeminiAnalyst(context.Background(), Options{APIKey: "g-test", Model: "gemini-test", BaseURL: server.URL})
	require.NoError(t, err)
	out, err := a.Complete(context.Background(), "You are a trader.", "Give a signal.")
	require.NoError(t, err)
	assert.Equal(t, "Action: SELL", out)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "llama"})
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestNew_DefaultsToOpenAI(t *testing.T) {
	a, err := New(context.Background(), Options{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", a.Name())
}

type fakeAnalyst struct {
	out string
	err error
}

func (f fakeAnalyst) Name() string { return "fake" }

func (f fakeAnalyst) Complete(context.Context, string, string) (string, error) {
	return f.out, f.err
}

type countingObserver struct {
	calls  int
	errors int
}

func (c *countingObserver) ObserveLLM(_ string, _ time.Duration, err error) {
	c.calls++
	if err != nil {
		c.errors++
	}
}

func TestInstrumented(t *testing.T) {
	obs := &countingObserver{}

	ok := &Instrumented{Analyst: fakeAnalyst{out: "done"}, Observer: obs}
	out, err := ok.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, "fake", ok.Name())

	boom := errors.New("quota exceeded")
	failing := &Instrumented{Analyst: fakeAnalyst{err: boom}, Observer: obs}
	_, err = failing.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 2, obs.calls)
	assert.Equal(t, 1, obs.errors)
}
