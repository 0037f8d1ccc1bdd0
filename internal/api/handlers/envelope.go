// POST / - vendor function-call envelope endpoint.
// The hosting platform inspects the response body, not the HTTP status, so
// every outcome (including decode and agent failures) is returned as a fully
// shaped envelope with HTTP 200.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/peterholko-pingidentity/action-agent/internal/api/ctxkeys"
	"github.com/peterholko-pingidentity/action-agent/internal/domain/run"
)

const envelopeMessageVersion = "1.0"

type EnvelopeHandler struct {
	agent    Invoker
	recorder *run.Recorder
	timeout  time.Duration
}

func NewEnvelopeHandler(agent Invoker, recorder *run.Recorder, timeout time.Duration) *EnvelopeHandler {
	return &EnvelopeHandler{agent: agent, recorder: recorder, timeout: timeout}
}

type envelopeParameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type envelopeRequest struct {
	MessageVersion string              `json:"messageVersion"`
	InputText      string              `json:"inputText"`
	SessionID      string              `json:"sessionId"`
	ActionGroup    string              `json:"actionGroup"`
	Function       string              `json:"function"`
	Parameters     []envelopeParameter `json:"parameters"`
}

type envelopeResponse struct {
	MessageVersion string               `json:"messageVersion"`
	Response       envelopeResponseBody `json:"response"`
}

type envelopeResponseBody struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse functionResponse `json:"functionResponse"`
}

type functionResponse struct {
	ResponseBody responseBody `json:"responseBody"`
}

type responseBody struct {
	Text textBody `json:"TEXT"`
}

type textBody struct {
	Body string `json:"body"`
}

// Handle processes one envelope call. All failure paths still produce a
// well-shaped envelope with HTTP 200.
func (h *EnvelopeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req envelopeRequest
	raw, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(raw, &req)
	}
	if req.Function == "" {
		req.Function = "unknown"
	}
	if err != nil {
		writeEnvelope(w, req, fmt.Sprintf("Error: invalid request body: %v", err))
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	input := buildEnvelopeInput(req)
	rec, err := h.recorder.Start(ctx, run.StartInput{
		Source:    run.SourceEnvelope,
		Requester: ctxkeys.String(ctx, ctxkeys.Requester),
		RequestID: ctxkeys.String(ctx, ctxkeys.RequestID),
		SessionID: req.SessionID,
		Input:     input,
	})
	if err != nil {
		writeEnvelope(w, req, fmt.Sprintf("Error: %v", err))
		return
	}

	started := time.Now()
	result, execErr := h.agent.Execute(ctx, input)
	if err := h.recorder.Finish(context.WithoutCancel(ctx), rec.ID, result, execErr, time.Since(started)); err != nil {
		writeEnvelope(w, req, fmt.Sprintf("Error: %v", err))
		return
	}

	if execErr != nil {
		writeEnvelope(w, req, fmt.Sprintf("Error: %v", execErr))
		return
	}
	writeEnvelope(w, req, result)
}

// buildEnvelopeInput combines the free-text input with the function name and
// decoded parameters into one task description for the agent.
func buildEnvelopeInput(req envelopeRequest) string {
	var b strings.Builder
	if text := strings.TrimSpace(req.InputText); text != "" {
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Function: %s", req.Function)
	if req.ActionGroup != "" {
		fmt.Fprintf(&b, " (action group: %s)", req.ActionGroup)
	}

	if len(req.Parameters) > 0 {
		b.WriteString("\nParameters:\n")
		params := decodeEnvelopeParameters(req.Parameters)
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, params[k])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// decodeEnvelopeParameters extracts name/value pairs, decoding each value as
// JSON when possible and falling back to the raw string.
func decodeEnvelopeParameters(params []envelopeParameter) map[string]any {
	out := make(map[string]any, len(params))
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(p.Value), &decoded); err == nil {
			out[p.Name] = decoded
		} else {
			out[p.Name] = p.Value
		}
	}
	return out
}

func writeEnvelope(w http.ResponseWriter, req envelopeRequest, body string) {
	version := req.MessageVersion
	if version == "" {
		version = envelopeMessageVersion
	}
	writeJSON(w, http.StatusOK, envelopeResponse{
		MessageVersion: version,
		Response: envelopeResponseBody{
			ActionGroup: req.ActionGroup,
			Function:    req.Function,
			FunctionResponse: functionResponse{
				ResponseBody: responseBody{Text: textBody{Body: body}},
			},
		},
	})
}
