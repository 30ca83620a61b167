package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownProvider is returned when no factory is registered for a provider.
var ErrUnknownProvider = errors.New("unknown provider")

// Factory builds a Model for one provider given the requested model name and
// the caller's credential.
type Factory func(model, apiKey string, timeout time.Duration) Model

// Registry maps provider names to Model factories. Adding a provider means
// registering a factory, not editing a branch chain.
type Registry struct {
	timeout   time.Duration
	factories map[string]Factory
}

// openAICompatible returns a factory for a provider that speaks the OpenAI
// chat completions wire format at the given base URL.
func openAICompatible(baseURL string) Factory {
	return func(model, apiKey string, timeout time.Duration) Model {
		return NewClient(baseURL, apiKey, model, timeout)
	}
}

// NewRegistry creates a registry pre-populated with the built-in providers.
func NewRegistry(timeout time.Duration) *Registry {
	r := &Registry{
		timeout:   timeout,
		factories: make(map[string]Factory),
	}
	r.Register("openai", openAICompatible("https://api.openai.com"))
	r.Register("deepseek", openAICompatible("https://api.deepseek.com"))
	r.Register("gemini", openAICompatible("https://generativelanguage.googleapis.com/v1beta/openai"))
	r.Register("ollama", openAICompatible("http://localhost:11434"))
	return r
}

// Register adds or replaces the factory for a provider name.
// Names are case-insensitive.
func (r *Registry) Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	r.factories[key] = factory
}

// Providers returns the registered provider names.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// ForProvider builds a Model for the named provider.
func (r *Registry) ForProvider(provider, model, apiKey string) (Model, error) {
	key := strings.ToLower(strings.TrimSpace(provider))
	if key == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrUnknownProvider)
	}
	factory, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return factory(model, apiKey, r.timeout), nil
}
