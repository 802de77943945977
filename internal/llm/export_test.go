package llm

import (
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/alnah/go-hhapply/internal/apierr"
)

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

var (
	OpenAICompatible    = openAICompatible
	ClassifyOpenAIError = classifyOpenAIError
	ClassifyGeminiError = classifyGeminiError
)

// Model is the Gemini dependency tests replace.
type Model = contentGenerator

// NewGeminiCompleter wraps a fake model.
func NewGeminiCompleter(m Model) *GeminiCompleter {
	c := newGeminiCompleter(m)
	c.retry = fastRetry
	return c
}

var fastRetry = apierr.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

// FastRetry shortens backoff delays on an OpenAI completer.
func FastRetry(c Completer) Completer {
	if oc, ok := c.(*OpenAICompleter); ok {
		oc.retry = fastRetry
	}
	return c
}

// Compile-time check that the fake shape matches langchaingo.
var _ Model = llms.Model(nil)
