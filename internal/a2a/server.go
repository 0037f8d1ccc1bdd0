// Package a2a mounts the agent behind the Agent2Agent protocol so peer
// agents (e.g. a chat agent) can delegate identity actions over JSON-RPC.
// Route shapes and task lifecycle are owned by the protocol library; this
// package only adapts between protocol messages and the agent's text-in,
// text-out contract.
package a2a

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	a2aproto "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/peterholko-pingidentity/action-agent/internal/api/handlers"
	"github.com/peterholko-pingidentity/action-agent/internal/domain/run"
)

// agentExecutor bridges protocol requests to the agent.
type agentExecutor struct {
	agent    handlers.Invoker
	recorder *run.Recorder
}

var _ a2asrv.AgentExecutor = (*agentExecutor)(nil)

// Execute pulls the text out of the incoming message, runs the agent, and
// publishes the answer as a single agent message on the task.
func (e *agentExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	input := extractText(reqCtx.Message)
	if input == "" {
		return fmt.Errorf("a2a: message has no text parts")
	}

	rec, err := e.recorder.Start(ctx, run.StartInput{
		Source: run.SourceA2A,
		Input:  input,
	})
	if err != nil {
		return fmt.Errorf("a2a: record run: %w", err)
	}

	started := time.Now()
	result, execErr := e.agent.Execute(ctx, input)
	if err := e.recorder.Finish(context.WithoutCancel(ctx), rec.ID, result, execErr, time.Since(started)); err != nil {
		return fmt.Errorf("a2a: record run: %w", err)
	}
	if execErr != nil {
		return fmt.Errorf("a2a: agent: %w", execErr)
	}

	reply := a2aproto.NewMessageForTask(a2aproto.MessageRoleAgent, reqCtx, a2aproto.TextPart{Text: result})
	return queue.Write(ctx, reply)
}

// Cancel is a no-op: invocations are short-lived and not resumable.
func (e *agentExecutor) Cancel(context.Context, *a2asrv.RequestContext, eventqueue.Queue) error {
	return nil
}

// extractText joins the text parts of one protocol message.
func extractText(msg *a2aproto.Message) string {
	if msg == nil {
		return ""
	}
	var parts []string
	for _, p := range msg.Parts {
		if tp, ok := p.(a2aproto.TextPart); ok && strings.TrimSpace(tp.Text) != "" {
			parts = append(parts, tp.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// NewCard describes this agent to peers. publicURL is where peers reach the
// mounted routes.
func NewCard(publicURL string) *a2aproto.AgentCard {
	return &a2aproto.AgentCard{
		Name:               "Action Agent",
		Description:        "Executes identity and access management actions: user creation, access grants, group assignment.",
		URL:                publicURL,
		Version:            "1.0.0",
		PreferredTransport: a2aproto.TransportProtocolJSONRPC,
		Capabilities:       a2aproto.AgentCapabilities{Streaming: false},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []a2aproto.AgentSkill{
			{
				ID:          "identity-actions",
				Name:        "Identity actions",
				Description: "Create users, grant resource access and assign groups via PingOne and Microsoft Graph.",
				Tags:        []string{"identity", "iam"},
				Examples: []string{
					"Create a user with email a@b.com named Ada Benson",
					"Grant user u-123 access to resource r-9",
				},
			},
		},
	}
}

// NewHandler builds the http.Handler serving the protocol routes: JSON-RPC
// at the mount root plus the well-known agent card.
func NewHandler(agent handlers.Invoker, recorder *run.Recorder, publicURL string) http.Handler {
	executor := &agentExecutor{agent: agent, recorder: recorder}
	requestHandler := a2asrv.NewHandler(executor)

	mux := http.NewServeMux()
	mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(NewCard(publicURL)))
	mux.Handle("/", a2asrv.NewJSONRPCHandler(requestHandler))
	return mux
}
