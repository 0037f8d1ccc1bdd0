// Package agent runs the tool-calling loop: it hands a request to the model
// together with the registry's tool specs, executes whatever tools the model
// asks for, and feeds results back until the model answers in plain text.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/peterholko-pingidentity/action-agent/internal/domain/tool"
	"github.com/peterholko-pingidentity/action-agent/internal/infra/llm"
)

// ErrToolRoundsExceeded is returned when the model keeps requesting tools
// past the configured round limit.
var ErrToolRoundsExceeded = errors.New("tool call rounds exceeded")

const defaultMaxRounds = 10

// DefaultSystemPrompt frames the model as an identity-management executor
// with a strict validate-then-act discipline.
const DefaultSystemPrompt = "You are the Action Agent in an identity & access management system.\n" +
	"- You receive structured requests (and conversational context) from a Chat Agent.\n" +
	"- Use PingOne MCP tools for identity, auth, groups, and policies.\n" +
	"- Use Microsoft Graph MCP tools for Microsoft 365 user and group operations.\n" +
	"- Always validate requests with validate_request before making changes.\n" +
	"- Always log important actions with log_action.\n" +
	"- Return clear, concise results including any important IDs (user IDs, group IDs, etc.).\n" +
	"- If a request is invalid, respond with a structured error message instead of guessing."

// Options tunes one agent instance.
type Options struct {
	Model        string
	Temperature  float32
	MaxRounds    int
	SystemPrompt string
}

// ActionAgent drives one model with one fixed tool registry.
type ActionAgent struct {
	provider llm.ChatProvider
	registry *tool.Registry
	opts     Options
}

// New creates an agent. The registry must already hold every tool the agent
// is allowed to use; nothing is added after construction.
func New(provider llm.ChatProvider, registry *tool.Registry, opts Options) (*ActionAgent, error) {
	if provider == nil {
		return nil, fmt.Errorf("agent: provider is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("agent: registry is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("agent: model is required")
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = defaultMaxRounds
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &ActionAgent{provider: provider, registry: registry, opts: opts}, nil
}

// Execute runs one request through the tool loop and returns the model's
// final text answer.
func (a *ActionAgent) Execute(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("agent: input is empty")
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.opts.SystemPrompt},
		{Role: llm.RoleUser, Content: input},
	}
	tools := a.toolSpecs()

	for round := 0; round < a.opts.MaxRounds; round++ {
		resp, err := a.provider.ChatCompletion(ctx, llm.ChatRequest{
			Model:       a.opts.Model,
			Messages:    messages,
			Tools:       tools,
			Temperature: a.opts.Temperature,
		})
		if err != nil {
			return "", fmt.Errorf("agent: chat completion: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			messages = append(messages, a.runTool(ctx, call))
		}
	}

	return "", fmt.Errorf("%w: gave up after %d rounds", ErrToolRoundsExceeded, a.opts.MaxRounds)
}

// runTool executes one requested call. Failures become tool messages rather
// than request failures, so the model can recover or report them.
func (a *ActionAgent) runTool(ctx context.Context, call llm.ToolCall) llm.Message {
	msg := llm.Message{
		Role:       llm.RoleTool,
		ToolName:   call.Name,
		ToolCallID: call.ID,
	}

	executor, err := a.registry.Get(call.Name)
	if err != nil {
		msg.Content = toolErrorJSON(err)
		return msg
	}

	result, err := executor.Execute(ctx, call.Arguments)
	if err != nil {
		msg.Content = toolErrorJSON(err)
		return msg
	}

	msg.Content = string(result)
	return msg
}

func (a *ActionAgent) toolSpecs() []llm.ToolSpec {
	specs := a.registry.Specs()
	out := make([]llm.ToolSpec, 0, len(specs))
	for _, s := range specs {
		out = append(out, llm.ToolSpec{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.InputSchema,
		})
	}
	return out
}

func toolErrorJSON(err error) string {
	raw, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return `{"error":"tool execution failed"}`
	}
	return string(raw)
}
