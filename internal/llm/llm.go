// Package llm sends prompts to chat models.
//
// Providers implement Completer, a single chat completion call. Client
// wraps a Completer with the end-marker protocol: prompts that ask the
// model to finish with <END> are continued until the marker shows up or the
// attempt bound is reached. Providers are looked up by name in a registry
// (see Register and New).
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-hhapply/internal/interval"
)

// EndMarker terminates complete answers when SendOptions.RequireEndMarker
// is set.
const EndMarker = "<END>"

// ContinuePrompt asks the model to resume a cut-off answer.
const ContinuePrompt = "Продолжи письмо, пожалуйста, с того места, где остановился."

const (
	defaultMaxAttempts   = 3
	defaultContinueDelay = 500 * time.Millisecond
)

// Roles of conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. The system prompt is passed
// separately.
type Message struct {
	Role    string
	Content string
}

// Completer performs one chat completion and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

// SendOptions tune one Send call.
type SendOptions struct {
	// RequireEndMarker continues the answer until EndMarker appears.
	RequireEndMarker bool
}

// Chat sends a message under a system prompt and returns the answer.
type Chat interface {
	Send(ctx context.Context, system, message string, opts SendOptions) (string, error)
}

// Compile-time interface compliance check.
var _ Chat = (*Client)(nil)

// Client implements Chat on top of a Completer.
type Client struct {
	completer   Completer
	maxAttempts int
	pause       func(ctx context.Context) error
	logger      *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMaxAttempts bounds the completions made for one end-marker answer.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithContinuePause sets what runs between continuation requests.
func WithContinuePause(pause func(ctx context.Context) error) ClientOption {
	return func(c *Client) {
		if pause != nil {
			c.pause = pause
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient wraps a Completer.
func NewClient(completer Completer, opts ...ClientOption) *Client {
	c := &Client{
		completer:   completer,
		maxAttempts: defaultMaxAttempts,
		pause: func(ctx context.Context) error {
			return interval.Sleep(ctx, defaultContinueDelay)
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send asks the model. Without RequireEndMarker the first answer is
// returned. With it, parts are accumulated and the model is asked to
// continue until a part contains EndMarker, at most maxAttempts
// completions. The marker is removed. When the bound is hit the partial
// text is returned and a warning logged.
func (c *Client) Send(ctx context.Context, system, message string, opts SendOptions) (string, error) {
	msgs := []Message{{Role: RoleUser, Content: message}}
	var parts []string

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.pause(ctx); err != nil {
				return "", err
			}
		}

		out, err := c.completer.Complete(ctx, system, msgs)
		if err != nil {
			return "", fmt.Errorf("llm completion: %w", err)
		}
		part := strings.TrimSpace(out)

		if !opts.RequireEndMarker {
			return part, nil
		}
		if i := strings.Index(part, EndMarker); i >= 0 {
			parts = append(parts, strings.TrimSpace(strings.ReplaceAll(part, EndMarker, "")))
			return joinParts(parts), nil
		}

		if part != "" {
			parts = append(parts, part)
			msgs = append(msgs, Message{Role: RoleAssistant, Content: part})
		}
		msgs = append(msgs, Message{Role: RoleUser, Content: ContinuePrompt})
		c.logger.Debug("answer without end marker, continuing", zap.Int("attempt", attempt))
	}

	c.logger.Warn("answer may be truncated: end marker not reached",
		zap.Int("attempts", c.maxAttempts))
	return joinParts(parts), nil
}

func joinParts(parts []string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
