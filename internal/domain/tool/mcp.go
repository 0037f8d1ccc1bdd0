// MCP-backed executors: each remote tool advertised by a connected server is
// registered under its own name, forwarding calls over the open session.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/peterholko-pingidentity/action-agent/internal/infra/mcp"
)

// ErrRemoteToolFailed is returned when the remote server reports a tool error.
var ErrRemoteToolFailed = errors.New("remote tool failed")

// mcpExecutor forwards one tool's calls to its owning session.
type mcpExecutor struct {
	session *sdk.ClientSession
	name    string
}

// NewMCPExecutor creates an executor invoking the named tool over session.
func NewMCPExecutor(session *sdk.ClientSession, name string) Executor {
	return &mcpExecutor{session: session, name: name}
}

// Execute calls the remote tool and flattens its content into a JSON result.
// A result flagged IsError by the server becomes a Go error so the agent loop
// can feed it back to the model uniformly.
func (e *mcpExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var args map[string]any
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return nil, fmt.Errorf("tool %q: arguments must be a JSON object: %w", e.name, err)
		}
	}

	res, err := e.session.CallTool(ctx, &sdk.CallToolParams{Name: e.name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("tool %q: %w", e.name, err)
	}

	text := flattenContent(res.Content)
	if res.IsError {
		return nil, fmt.Errorf("%w: %s: %s", ErrRemoteToolFailed, e.name, text)
	}

	return json.Marshal(map[string]string{"result": text})
}

// flattenContent joins the text parts of a tool result.
func flattenContent(content []sdk.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*sdk.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// RegisterMCPTools registers every tool from every connected server.
// Input schemas pass through verbatim so the model sees exactly what the
// server advertised.
func RegisterMCPTools(registry *Registry, manager *mcp.Manager) error {
	for _, st := range manager.Servers() {
		for _, t := range st.Tools {
			var schema json.RawMessage
			if t.InputSchema != nil {
				raw, err := json.Marshal(t.InputSchema)
				if err != nil {
					return fmt.Errorf("tool %q from %q: marshal schema: %w", t.Name, st.Endpoint.Name, err)
				}
				schema = raw
			}
			if err := registry.Register(Spec{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: schema,
			}, NewMCPExecutor(st.Session, t.Name)); err != nil {
				return fmt.Errorf("register %q from %q: %w", t.Name, st.Endpoint.Name, err)
			}
		}
	}
	return nil
}
