package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/llm"
	"github.com/alnah/go-hhapply/internal/notify"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string
	Now    func() time.Time

	// Flags holds the persistent flags bound by BindGlobalFlags.
	Flags GlobalFlags

	// Factories for domain objects
	ConfigLoader    ConfigLoader
	ClientFactory   ClientFactory
	ChatFactory     ChatFactory
	NotifierFactory NotifierFactory
}

// ConfigLoader loads the configuration.
type ConfigLoader interface {
	Load(opts config.LoadOptions) (config.Config, error)
}

// ClientFactory creates authenticated hh clients.
type ClientFactory interface {
	NewClient(cfg hh.ClientConfig, opts ...hh.SessionOption) *hh.Client
}

// ChatFactory creates LLM chats for configured providers.
type ChatFactory interface {
	NewChat(ctx context.Context, opts llm.Options, clientOpts ...llm.ClientOption) (llm.Chat, error)
}

// NotifierFactory creates run summary notifiers.
type NotifierFactory interface {
	NewNotifier(token string, chatID int64) (notify.Notifier, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithClientFactory sets the hh client factory.
func WithClientFactory(f ClientFactory) EnvOption {
	return func(e *Env) {
		e.ClientFactory = f
	}
}

// WithChatFactory sets the LLM chat factory.
func WithChatFactory(f ChatFactory) EnvOption {
	return func(e *Env) {
		e.ChatFactory = f
	}
}

// WithNotifierFactory sets the notifier factory.
func WithNotifierFactory(f NotifierFactory) EnvOption {
	return func(e *Env) {
		e.NotifierFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Stdin:           os.Stdin,
		Getenv:          os.Getenv,
		Now:             time.Now,
		Flags:           GlobalFlags{Delay: hh.DefaultDelay},
		ConfigLoader:    &defaultConfigLoader{},
		ClientFactory:   &defaultClientFactory{},
		ChatFactory:     &defaultChatFactory{},
		NotifierFactory: &defaultNotifierFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(opts config.LoadOptions) (config.Config, error) {
	return config.Load(opts)
}

// defaultClientFactory implements ClientFactory against api.hh.ru.
type defaultClientFactory struct{}

func (defaultClientFactory) NewClient(cfg hh.ClientConfig, opts ...hh.SessionOption) *hh.Client {
	return hh.NewClient(cfg, opts...)
}

// defaultChatFactory implements ChatFactory using the llm registry.
type defaultChatFactory struct{}

func (defaultChatFactory) NewChat(ctx context.Context, opts llm.Options, clientOpts ...llm.ClientOption) (llm.Chat, error) {
	c, err := llm.New(ctx, opts, clientOpts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// defaultNotifierFactory implements NotifierFactory using Telegram.
type defaultNotifierFactory struct{}

func (defaultNotifierFactory) NewNotifier(token string, chatID int64) (notify.Notifier, error) {
	t, err := notify.NewTelegram(token, chatID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ ClientFactory   = (*defaultClientFactory)(nil)
	_ ChatFactory     = (*defaultChatFactory)(nil)
	_ NotifierFactory = (*defaultNotifierFactory)(nil)
)
