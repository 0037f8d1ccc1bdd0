// Builtin helper tools: request validation and action logging.
// These are the two local tools registered alongside the remote MCP tools;
// the system prompt tells the model to call validate_request before making
// changes and log_action after important actions.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const (
	BuiltinValidateRequest = "validate_request"
	BuiltinLogAction       = "log_action"
)

// requiredFields is the static request-kind → required-field table.
// Known at startup; there is no runtime schema evolution.
var requiredFields = map[string][]string{
	"create_user":  {"email", "first_name", "last_name"},
	"grant_access": {"user_id", "resource_id"},
	"assign_group": {"user_id", "group_id"},
}

// ValidationResult reports whether a request carries every required field.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateRequest checks the parameter mapping for requestType against the
// required-field table. Pure function, no side effects, no I/O.
func ValidateRequest(requestType string, data map[string]any) ValidationResult {
	fields, ok := requiredFields[requestType]
	if !ok {
		return ValidationResult{Valid: false, Error: fmt.Sprintf("Unknown request_type: %s", requestType)}
	}

	var missing []string
	for _, f := range fields {
		if _, present := data[f]; !present {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return ValidationResult{Valid: false, Error: fmt.Sprintf("Missing fields: %s", strings.Join(missing, ", "))}
	}

	return ValidationResult{Valid: true}
}

// RequestKinds returns the known request kinds, sorted for stable output.
func RequestKinds() []string {
	kinds := make([]string, 0, len(requiredFields))
	for k := range requiredFields {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ActionLogger emits audit-trail lines for actions the agent performed.
// Output goes to a single writer (process stdout in production); there is no
// persistence and no failure mode - the writer is assumed always writable.
type ActionLogger struct {
	out io.Writer
}

// NewActionLogger creates a logger writing to out; nil means os.Stdout.
func NewActionLogger(out io.Writer) *ActionLogger {
	if out == nil {
		out = os.Stdout
	}
	return &ActionLogger{out: out}
}

// LogAction writes one human-readable line and returns a confirmation string
// containing the action, target and result verbatim.
func (l *ActionLogger) LogAction(action, target, result string, details map[string]any) string {
	line := fmt.Sprintf("[LOG] %s on %s: %s", action, target, result)
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			line += " " + string(raw)
		}
	}
	fmt.Fprintln(l.out, line)
	return fmt.Sprintf("Logged: %s on %s: %s", action, target, result)
}

// ===== EXECUTORS =====

type validateRequestParams struct {
	RequestType string         `json:"request_type"`
	Data        map[string]any `json:"data"`
}

// NewValidateRequestExecutor wraps ValidateRequest as a registry tool.
func NewValidateRequestExecutor() Executor {
	return ExecutorFunc(func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		var in validateRequestParams
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, fmt.Errorf("validate_request: invalid params: %w", err)
		}
		return json.Marshal(ValidateRequest(in.RequestType, in.Data))
	})
}

type logActionParams struct {
	Action  string         `json:"action"`
	Target  string         `json:"target"`
	Result  string         `json:"result"`
	Details map[string]any `json:"details"`
}

type logActionResult struct {
	Confirmation string `json:"confirmation"`
}

// NewLogActionExecutor wraps logger.LogAction as a registry tool.
func NewLogActionExecutor(logger *ActionLogger) Executor {
	return ExecutorFunc(func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		var in logActionParams
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, fmt.Errorf("log_action: invalid params: %w", err)
		}
		confirmation := logger.LogAction(in.Action, in.Target, in.Result, in.Details)
		return json.Marshal(logActionResult{Confirmation: confirmation})
	})
}

// RegisterBuiltins adds the two local helper tools to the registry.
func RegisterBuiltins(registry *Registry, logger *ActionLogger) error {
	if err := registry.Register(Spec{
		Name:        BuiltinValidateRequest,
		Description: "Validate that an identity request has all required fields before executing it.",
		InputSchema: json.RawMessage(`{"type":"object","required":["request_type","data"],"properties":{"request_type":{"type":"string","description":"One of: create_user, grant_access, assign_group"},"data":{"type":"object","description":"The request parameters to validate"}},"additionalProperties":false}`),
	}, NewValidateRequestExecutor()); err != nil {
		return err
	}

	return registry.Register(Spec{
		Name:        BuiltinLogAction,
		Description: "Log an executed action for the audit trail.",
		InputSchema: json.RawMessage(`{"type":"object","required":["action","target","result"],"properties":{"action":{"type":"string"},"target":{"type":"string"},"result":{"type":"string"},"details":{"type":"object"}},"additionalProperties":false}`),
	}, NewLogActionExecutor(logger))
}
