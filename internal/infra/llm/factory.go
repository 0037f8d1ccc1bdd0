// Package llm - provider selection.
package llm

import "fmt"

// Provider selector values accepted by MODEL_PROVIDER.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// NewProvider builds the ChatProvider named by provider.
// Unknown provider names are a configuration error and abort startup.
func NewProvider(provider, model, ollamaBaseURL string) (ChatProvider, error) {
	switch provider {
	case ProviderOllama:
		return NewOllamaProvider(ollamaBaseURL, model), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (want %q or %q)",
			provider, ProviderOllama, ProviderOpenAI)
	}
}
