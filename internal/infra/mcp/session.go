// Package mcp manages the long-lived client sessions to the remote MCP tool
// servers (PingOne, Microsoft Graph). Sessions are opened once at startup,
// their tool lists fetched, and the handles shared read-only by every request
// until shutdown closes them in reverse order of opening.
//
// Startup is fail-closed: any configured endpoint that cannot be reached or
// listed aborts the whole connect, releasing sessions already opened.
package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Transport names accepted by Endpoint.Transport.
const (
	TransportStreamable = "streamable"
	TransportSSE        = "sse"
)

// Endpoint describes one remote tool server.
type Endpoint struct {
	Name      string
	URL       string
	Transport string
}

// ServerTools pairs an open session with the tool descriptors it advertised
// at startup. The tool list is immutable after Connect returns.
type ServerTools struct {
	Endpoint Endpoint
	Session  *sdk.ClientSession
	Tools    []*sdk.Tool
}

// Manager owns the open sessions for the process lifetime.
type Manager struct {
	impl    *sdk.Implementation
	servers []*ServerTools
}

// Connect opens a session to every endpoint and fetches its tool list.
// On any failure it closes the sessions opened so far and returns an error
// naming the endpoint, so the caller can abort startup with a clear message.
func Connect(ctx context.Context, clientName, clientVersion string, endpoints []Endpoint) (*Manager, error) {
	m := &Manager{
		impl: &sdk.Implementation{Name: clientName, Version: clientVersion},
	}

	for _, ep := range endpoints {
		st, err := m.connect(ctx, ep)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("mcp: endpoint %q (%s): %w", ep.Name, ep.URL, err)
		}
		m.servers = append(m.servers, st)
	}

	return m, nil
}

// Servers returns the open sessions in connection order.
func (m *Manager) Servers() []*ServerTools {
	return m.servers
}

// ToolCount returns the total number of tools advertised across all servers.
func (m *Manager) ToolCount() int {
	n := 0
	for _, st := range m.servers {
		n += len(st.Tools)
	}
	return n
}

// Close closes every session in reverse order of opening.
// Safe to call on a partially connected manager.
func (m *Manager) Close() error {
	var errs []error
	for i := len(m.servers) - 1; i >= 0; i-- {
		if err := m.servers[i].Session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", m.servers[i].Endpoint.Name, err))
		}
	}
	m.servers = nil
	return errors.Join(errs...)
}

func (m *Manager) connect(ctx context.Context, ep Endpoint) (*ServerTools, error) {
	transport, err := transportFor(ep)
	if err != nil {
		return nil, err
	}

	client := sdk.NewClient(m.impl, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	tools, err := listAllTools(ctx, session)
	if err != nil {
		session.Close() //nolint:errcheck
		return nil, fmt.Errorf("list tools: %w", err)
	}

	return &ServerTools{Endpoint: ep, Session: session, Tools: tools}, nil
}

func transportFor(ep Endpoint) (sdk.Transport, error) {
	switch ep.Transport {
	case TransportStreamable:
		return &sdk.StreamableClientTransport{Endpoint: ep.URL}, nil
	case TransportSSE:
		return &sdk.SSEClientTransport{Endpoint: ep.URL}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", ep.Transport)
	}
}

// listAllTools pages through tools/list until the server reports no cursor.
func listAllTools(ctx context.Context, session *sdk.ClientSession) ([]*sdk.Tool, error) {
	var tools []*sdk.Tool
	params := &sdk.ListToolsParams{}
	for {
		res, err := session.ListTools(ctx, params)
		if err != nil {
			return nil, err
		}
		tools = append(tools, res.Tools...)
		if res.NextCursor == "" {
			return tools, nil
		}
		params.Cursor = res.NextCursor
	}
}
