package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-hhapply/internal/apierr"
)

// Provider names.
const (
	ProviderOpenAI   = "openai"
	ProviderGroq     = "groq"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

const (
	groqBaseURL     = "https://api.groq.com/openai/v1"
	deepSeekBaseURL = "https://api.deepseek.com/v1"

	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGroqModel     = "llama-3.3-70b-versatile"
	defaultDeepSeekModel = "deepseek-chat"

	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// chatCompleter is an internal interface for OpenAI chat completion.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance check.
var _ Completer = (*OpenAICompleter)(nil)

// OpenAICompleter talks to any OpenAI-compatible chat completion API.
// Transient failures are retried with exponential backoff.
type OpenAICompleter struct {
	client      chatCompleter
	model       string
	temperature float32
	topP        float32
	maxTokens   int
	retry       apierr.RetryConfig
}

// openAICompatible returns a Factory for an OpenAI-compatible endpoint.
// An empty baseURL keeps the go-openai default.
func openAICompatible(baseURL, model string) Factory {
	return func(_ context.Context, opts Options) (Completer, error) {
		if opts.APIKey == "" {
			return nil, ErrEmptyAPIKey
		}
		cfg := openai.DefaultConfig(opts.APIKey)
		switch {
		case opts.BaseURL != "":
			cfg.BaseURL = opts.BaseURL
		case baseURL != "":
			cfg.BaseURL = baseURL
		}
		if opts.HTTPClient != nil {
			cfg.HTTPClient = opts.HTTPClient
		}
		if opts.Model == "" {
			opts.Model = model
		}
		return newOpenAICompleter(openai.NewClientWithConfig(cfg), opts), nil
	}
}

func newOpenAICompleter(cc chatCompleter, opts Options) *OpenAICompleter {
	return &OpenAICompleter{
		client:      cc,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		topP:        float32(opts.TopP),
		maxTokens:   opts.MaxTokens,
		retry: apierr.RetryConfig{
			MaxRetries: defaultMaxRetries,
			BaseDelay:  defaultBaseDelay,
			MaxDelay:   defaultMaxDelay,
		},
	}
}

// Complete sends the conversation and returns the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
	}
	if system != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return apierr.RetryWithBackoff(ctx, c.retry, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	}, apierr.Retryable)
}

// classifyOpenAIError maps OpenAI API errors to sentinel errors.
// Uses errors.As for robust error type checking instead of string matching.
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if kind := kindForStatus(apiErr.HTTPStatusCode, apiErr.Message); kind != nil {
			return fmt.Errorf("%s: %w", apiErr.Message, kind)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if kind := kindForStatus(reqErr.HTTPStatusCode, ""); kind != nil {
			return fmt.Errorf("%s: %w", reqErr.Error(), kind)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	return err
}

// kindForStatus maps a provider HTTP status to an LLM sentinel, or nil.
func kindForStatus(status int, message string) error {
	switch status {
	case http.StatusTooManyRequests:
		lower := strings.ToLower(message)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return apierr.ErrQuotaExceeded
		}
		return apierr.ErrRateLimit
	case http.StatusPaymentRequired:
		return apierr.ErrQuotaExceeded
	case http.StatusUnauthorized:
		return apierr.ErrAuthFailed
	case http.StatusRequestTimeout, http.StatusGatewayTimeout,
		http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return apierr.ErrTimeout
	}
	return nil
}
