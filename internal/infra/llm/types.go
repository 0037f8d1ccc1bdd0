// Package llm defines the model-agnostic chat-model abstraction.
// All types here are shared between the provider interface and adapters.
package llm

import "encoding/json"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single turn in a conversation.
// Assistant turns may carry tool calls instead of (or alongside) content;
// tool turns carry the result of one call and echo its name and id.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // set on assistant turns that requested tools
	ToolName   string     // set on tool turns
	ToolCallID string     // set on tool turns (providers that correlate by id)
}

// ToolSpec describes one callable tool the model may select.
// Parameters is a JSON Schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is the model's request to invoke a named tool with JSON arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Tools       []ToolSpec
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming chat completion.
// When ToolCalls is non-empty the model wants tools executed before it
// produces a final answer.
type ChatResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string // "stop" | "length" | "tool_calls" | provider-specific
	Tokens     int    // Total tokens consumed (prompt + completion).
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID        string // e.g. "llama3.2:3b", "gpt-4o-mini"
	Provider  string // e.g. "ollama", "openai"
	Version   string
	MaxTokens int // Maximum context window size.
}
