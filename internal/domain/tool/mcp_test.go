package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/peterholko-pingidentity/action-agent/internal/infra/mcp"
)

type grantAccessArgs struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
}

func newRemoteToolManager(t *testing.T) *mcp.Manager {
	t.Helper()

	server := sdk.NewServer(&sdk.Implementation{Name: "test-tools", Version: "0.1.0"}, nil)
	sdk.AddTool(server, &sdk.Tool{
		Name:        "grant_access",
		Description: "Grant a user access to a resource.",
		// user_id is deliberately not in Required: the handler reports its
		// absence through an IsError result rather than schema validation.
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"resource_id"},
			Properties: map[string]*jsonschema.Schema{
				"user_id":     {Type: "string"},
				"resource_id": {Type: "string"},
			},
		},
	}, func(ctx context.Context, req *sdk.CallToolRequest, args grantAccessArgs) (*sdk.CallToolResult, any, error) {
		if args.UserID == "" {
			return &sdk.CallToolResult{
				Content: []sdk.Content{&sdk.TextContent{Text: "user_id is required"}},
				IsError: true,
			}, nil, nil
		}
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: fmt.Sprintf("granted %s to %s", args.ResourceID, args.UserID)}},
		}, nil, nil
	})

	handler := sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server { return server }, nil)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m, err := mcp.Connect(context.Background(), "action-agent", "test", []mcp.Endpoint{
		{Name: "msgraph", URL: srv.URL, Transport: mcp.TransportStreamable},
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestRegisterMCPTools(t *testing.T) {
	t.Parallel()

	manager := newRemoteToolManager(t)
	registry := NewRegistry()

	if err := RegisterMCPTools(registry, manager); err != nil {
		t.Fatalf("RegisterMCPTools: %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", registry.Len())
	}

	// The advertised schema passes through to the registered spec.
	spec := registry.Specs()[0]
	var schema map[string]any
	if err := json.Unmarshal(spec.InputSchema, &schema); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	if schema["type"] != "object" {
		t.Errorf("schema type = %v", schema["type"])
	}
	if props, ok := schema["properties"].(map[string]any); !ok || props["user_id"] == nil {
		t.Errorf("schema should keep user_id property, got %v", schema["properties"])
	}

	exec, err := registry.Get("grant_access")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	out, err := exec.Execute(context.Background(),
		json.RawMessage(`{"user_id":"u1","resource_id":"r1"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var res map[string]string
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if res["result"] != "granted r1 to u1" {
		t.Errorf("result = %q, want %q", res["result"], "granted r1 to u1")
	}
}

func TestMCPExecutor_RemoteError(t *testing.T) {
	t.Parallel()

	manager := newRemoteToolManager(t)
	registry := NewRegistry()
	if err := RegisterMCPTools(registry, manager); err != nil {
		t.Fatalf("RegisterMCPTools: %v", err)
	}

	exec, err := registry.Get("grant_access")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = exec.Execute(context.Background(), json.RawMessage(`{"resource_id":"r1"}`))
	if !errors.Is(err, ErrRemoteToolFailed) {
		t.Fatalf("err = %v, want ErrRemoteToolFailed", err)
	}
	if !strings.Contains(err.Error(), "user_id is required") {
		t.Errorf("error %q should carry the server's message", err)
	}
}

func TestMCPExecutor_RejectsNonObjectArguments(t *testing.T) {
	t.Parallel()

	manager := newRemoteToolManager(t)
	exec := NewMCPExecutor(manager.Servers()[0].Session, "grant_access")

	if _, err := exec.Execute(context.Background(), json.RawMessage(`"nope"`)); err == nil {
		t.Fatal("expected error for non-object arguments")
	}
}
