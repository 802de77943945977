package llm_test

// Notes:
// - Client tests drive the end-marker loop with a scripted Completer; no
//   network, pauses replaced by a counter
// - Provider tests live in openai_test.go and gemini_test.go

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-hhapply/internal/llm"
)

// scripted returns its outputs in order and records every conversation.
type scripted struct {
	mu      sync.Mutex
	outputs []string
	err     error
	calls   [][]llm.Message
	systems []string
}

func (s *scripted) Complete(_ context.Context, system string, msgs []llm.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]llm.Message(nil), msgs...))
	s.systems = append(s.systems, system)
	if s.err != nil {
		return "", s.err
	}
	if len(s.calls) > len(s.outputs) {
		return "", nil
	}
	return s.outputs[len(s.calls)-1], nil
}

func countingPause(n *int) llm.ClientOption {
	return llm.WithContinuePause(func(context.Context) error {
		*n++
		return nil
	})
}

// ---------------------------------------------------------------------------
// TestClient_Send - End-marker continuation
// ---------------------------------------------------------------------------

func TestClient_Send_WithoutMarkerReturnsFirstAnswer(t *testing.T) {
	t.Parallel()

	s := &scripted{outputs: []string{"  hello  "}}
	c := llm.NewClient(s)

	got, err := c.Send(context.Background(), "sys", "hi", llm.SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	require.Len(t, s.calls, 1)
	assert.Equal(t, "sys", s.systems[0])
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, s.calls[0])
}

func TestClient_Send_MarkerOnFirstPart(t *testing.T) {
	t.Parallel()

	s := &scripted{outputs: []string{"Dear team, thanks. <END>"}}
	var pauses int
	c := llm.NewClient(s, countingPause(&pauses))

	got, err := c.Send(context.Background(), "", "write", llm.SendOptions{RequireEndMarker: true})
	require.NoError(t, err)
	assert.Equal(t, "Dear team, thanks.", got)
	assert.Len(t, s.calls, 1)
	assert.Zero(t, pauses)
}

func TestClient_Send_ContinuesUntilMarker(t *testing.T) {
	t.Parallel()

	s := &scripted{outputs: []string{"first part", "second part <END>"}}
	var pauses int
	c := llm.NewClient(s, countingPause(&pauses))

	got, err := c.Send(context.Background(), "", "write", llm.SendOptions{RequireEndMarker: true})
	require.NoError(t, err)
	assert.Equal(t, "first part second part", got)
	assert.Equal(t, 1, pauses)

	require.Len(t, s.calls, 2)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "write"},
		{Role: llm.RoleAssistant, Content: "first part"},
		{Role: llm.RoleUser, Content: llm.ContinuePrompt},
	}, s.calls[1])
}

func TestClient_Send_BoundReturnsPartialAndWarns(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	s := &scripted{outputs: []string{"a", "b", "c", "never reached <END>"}}
	var pauses int
	c := llm.NewClient(s, countingPause(&pauses), llm.WithLogger(zap.New(core)))

	got, err := c.Send(context.Background(), "", "write", llm.SendOptions{RequireEndMarker: true})
	require.NoError(t, err)
	assert.Equal(t, "a b c", got)
	assert.Len(t, s.calls, 3)
	assert.Equal(t, 2, pauses)
	assert.Equal(t, 1, logs.Len())
}

func TestClient_Send_EmptyPartCountsAsAttempt(t *testing.T) {
	t.Parallel()

	s := &scripted{outputs: []string{"", "done <END>"}}
	c := llm.NewClient(s, countingPause(new(int)))

	got, err := c.Send(context.Background(), "", "write", llm.SendOptions{RequireEndMarker: true})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	require.Len(t, s.calls, 2)
	// No empty assistant turn is recorded.
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "write"},
		{Role: llm.RoleUser, Content: llm.ContinuePrompt},
	}, s.calls[1])
}

func TestClient_Send_MaxAttemptsOption(t *testing.T) {
	t.Parallel()

	s := &scripted{outputs: []string{"x"}}
	c := llm.NewClient(s, llm.WithMaxAttempts(1))

	got, err := c.Send(context.Background(), "", "write", llm.SendOptions{RequireEndMarker: true})
	require.NoError(t, err)
	assert.Equal(t, "x", got)
	assert.Len(t, s.calls, 1)
}

func TestClient_Send_CompleterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := llm.NewClient(&scripted{err: boom})

	_, err := c.Send(context.Background(), "", "write", llm.SendOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestClient_Send_PauseCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &scripted{outputs: []string{"partial"}}
	c := llm.NewClient(s)

	_, err := c.Send(ctx, "", "write", llm.SendOptions{RequireEndMarker: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, s.calls, 1)
}

// ---------------------------------------------------------------------------
// TestNew - Registry
// ---------------------------------------------------------------------------

func TestNew_Registry(t *testing.T) {
	t.Parallel()

	_, err := llm.New(context.Background(), llm.Options{})
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	_, err = llm.New(context.Background(), llm.Options{Provider: "nope"})
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)

	_, err = llm.New(context.Background(), llm.Options{Provider: "openai"})
	assert.ErrorIs(t, err, llm.ErrEmptyAPIKey)

	assert.Subset(t, llm.Providers(), []string{"deepseek", "gemini", "groq", "openai"})
}

func TestNew_CustomProvider(t *testing.T) {
	t.Parallel()

	llm.Register("Echo-Test", func(_ context.Context, opts llm.Options) (llm.Completer, error) {
		return &scripted{outputs: []string{opts.Model + " <END>"}}, nil
	})

	c, err := llm.New(context.Background(), llm.Options{Provider: "echo-test", Model: "m1"})
	require.NoError(t, err)

	got, err := c.Send(context.Background(), "", "x", llm.SendOptions{RequireEndMarker: true})
	require.NoError(t, err)
	assert.Equal(t, "m1", got)
}
