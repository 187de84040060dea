package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Client is the narrow interface the pipeline stages use to reach the
// inference service. Implementations must be safe for sequential reuse
// across stages; souschef never calls Complete concurrently within a run.
type Client interface {
	// Complete sends one chat-completion request and returns the
	// model's text answer. The system message frames the task; the
	// prompt carries instruction plus context.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint,
// including local servers that ignore the API key.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
	timeout     time.Duration
	logger      *slog.Logger
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the model identifier sent with each request.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// WithTemperature sets the sampling temperature. Structured-extraction
// callers want this low; the default is 0.1.
func WithTemperature(t float64) OpenAIOption {
	return func(c *OpenAIClient) {
		c.temperature = t
	}
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int64) OpenAIOption {
	return func(c *OpenAIClient) {
		c.maxTokens = n
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient) {
		c.timeout = d
	}
}

// WithClientLogger sets a custom logger.
func WithClientLogger(logger *slog.Logger) OpenAIOption {
	return func(c *OpenAIClient) {
		c.logger = logger
	}
}

// NewOpenAIClient creates a client for the given base URL and API key.
// The key may be empty for local servers.
func NewOpenAIClient(baseURL, apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model:       "qwen/qwen3-4b-2507",
		temperature: 0.1,
		maxTokens:   4000,
		timeout:     120 * time.Second,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("inference completed",
		"model", c.model,
		"elapsed", time.Since(start),
		"prompt_len", len(prompt),
	)

	return resp.Choices[0].Message.Content, nil
}
