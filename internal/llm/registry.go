package llm

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// Options configure a provider. Zero values take provider defaults.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	TopP        float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Factory builds a Completer from options.
type Factory func(ctx context.Context, opts Options) (Completer, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a provider available to New under name. Registering the
// same name twice replaces the factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = f
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds a Client for opts.Provider.
func New(ctx context.Context, opts Options, clientOpts ...ClientOption) (*Client, error) {
	if opts.Provider == "" {
		return nil, ErrNotConfigured
	}
	registryMu.RLock()
	f, ok := registry[strings.ToLower(opts.Provider)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q (available: %s): %w",
			opts.Provider, strings.Join(Providers(), ", "), ErrUnknownProvider)
	}

	completer, err := f(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", opts.Provider, err)
	}
	return NewClient(completer, clientOpts...), nil
}

func init() {
	Register(ProviderOpenAI, openAICompatible("", defaultOpenAIModel))
	Register(ProviderGroq, openAICompatible(groqBaseURL, defaultGroqModel))
	Register(ProviderDeepSeek, openAICompatible(deepSeekBaseURL, defaultDeepSeekModel))
	Register(ProviderGemini, newGemini)
}
