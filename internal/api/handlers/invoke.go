// POST /invoke - plain JSON entry point: one task in, one text result out.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/peterholko-pingidentity/action-agent/internal/api/ctxkeys"
	"github.com/peterholko-pingidentity/action-agent/internal/domain/run"
)

// Invoker runs one request through the agent and returns its text answer.
type Invoker interface {
	Execute(ctx context.Context, input string) (string, error)
}

type InvokeHandler struct {
	agent    Invoker
	recorder *run.Recorder
	timeout  time.Duration
}

func NewInvokeHandler(agent Invoker, recorder *run.Recorder, timeout time.Duration) *InvokeHandler {
	return &InvokeHandler{agent: agent, recorder: recorder, timeout: timeout}
}

type invokeRequest struct {
	Task       string         `json:"task"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type invokeResponse struct {
	Result string `json:"result"`
	RunID  string `json:"run_id,omitempty"`
}

func (h *InvokeHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Task) == "" {
		writeError(w, http.StatusBadRequest, "task is required")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	input := buildTaskInput(req.Task, req.Parameters)

	rec, err := h.recorder.Start(ctx, run.StartInput{
		Source:    run.SourceHTTP,
		Requester: ctxkeys.String(ctx, ctxkeys.Requester),
		RequestID: ctxkeys.String(ctx, ctxkeys.RequestID),
		Input:     input,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record run")
		return
	}

	started := time.Now()
	result, execErr := h.agent.Execute(ctx, input)
	// Finish must outlive a timed-out request context.
	if err := h.recorder.Finish(context.WithoutCancel(ctx), rec.ID, result, execErr, time.Since(started)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record run")
		return
	}

	if execErr != nil {
		writeError(w, http.StatusInternalServerError, execErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, invokeResponse{Result: result, RunID: rec.ID})
}

// buildTaskInput folds structured parameters into the task text so the model
// sees them inline, sorted for a stable prompt.
func buildTaskInput(task string, params map[string]any) string {
	if len(params) == 0 {
		return task
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\nParameters:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, params[k])
	}
	return strings.TrimRight(b.String(), "\n")
}
