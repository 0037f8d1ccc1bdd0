// Package llm - ChatProvider interface.
// Adapters (Ollama, OpenAI) implement this interface so the agent runtime is
// never coupled to a specific model vendor.
package llm

import "context"

// ChatProvider is the model-agnostic interface for chat completions.
// Tool selection happens inside the model; callers pass the available tool
// specs on every request and execute whatever the response asks for.
type ChatProvider interface {
	// ChatCompletion performs a non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
