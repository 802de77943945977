package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/alnah/go-hhapply/internal/apierr"
)

const defaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the part of llms.Model the Gemini adapter uses.
// *googleai.GoogleAI implements it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Compile-time interface compliance check.
var _ Completer = (*GeminiCompleter)(nil)

// GeminiCompleter talks to Google Gemini through langchaingo.
type GeminiCompleter struct {
	model contentGenerator
	retry apierr.RetryConfig
}

func newGemini(ctx context.Context, opts Options) (Completer, error) {
	if opts.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	gopts := []googleai.Option{
		googleai.WithAPIKey(opts.APIKey),
		googleai.WithDefaultModel(model),
	}
	if opts.MaxTokens > 0 {
		gopts = append(gopts, googleai.WithDefaultMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		gopts = append(gopts, googleai.WithDefaultTemperature(opts.Temperature))
	}
	if opts.TopP > 0 {
		gopts = append(gopts, googleai.WithDefaultTopP(opts.TopP))
	}
	if opts.HTTPClient != nil {
		gopts = append(gopts, googleai.WithHTTPClient(opts.HTTPClient))
	}

	g, err := googleai.New(ctx, gopts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiCompleter(g), nil
}

func newGeminiCompleter(g contentGenerator) *GeminiCompleter {
	return &GeminiCompleter{
		model: g,
		retry: apierr.RetryConfig{
			MaxRetries: defaultMaxRetries,
			BaseDelay:  defaultBaseDelay,
			MaxDelay:   defaultMaxDelay,
		},
	}
}

// Complete sends the conversation and returns the first candidate.
func (c *GeminiCompleter) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages)+1)
	if system != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	return apierr.RetryWithBackoff(ctx, c.retry, func() (string, error) {
		resp, err := c.model.GenerateContent(ctx, content)
		if err != nil {
			return "", classifyGeminiError(err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		return resp.Choices[0].Content, nil
	}, apierr.Retryable)
}

// classifyGeminiError maps langchaingo error codes onto the LLM sentinels.
func classifyGeminiError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	var llmErr *llms.Error
	if errors.As(err, &llmErr) {
		switch llmErr.Code {
		case llms.ErrCodeRateLimit:
			return fmt.Errorf("%s: %w", llmErr.Message, apierr.ErrRateLimit)
		case llms.ErrCodeQuotaExceeded:
			return fmt.Errorf("%s: %w", llmErr.Message, apierr.ErrQuotaExceeded)
		case llms.ErrCodeAuthentication:
			return fmt.Errorf("%s: %w", llmErr.Message, apierr.ErrAuthFailed)
		case llms.ErrCodeTimeout, llms.ErrCodeProviderUnavailable:
			return fmt.Errorf("%s: %w", llmErr.Message, apierr.ErrTimeout)
		}
	}
	return err
}
