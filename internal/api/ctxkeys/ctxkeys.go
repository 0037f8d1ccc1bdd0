// Shared context keys for the API layer.
// Extracted to a leaf package to avoid import cycles between api and
// api/middleware.
package ctxkeys

import "context"

// Key is the unexported named type for all API context keys.
// context.Value compares both type and value, so a named type cannot collide
// with plain string keys from other packages.
type Key string

const (
	// Requester identifies the upstream agent named in a signed instruction.
	// Injected by InstructionAuth, read by handlers for run attribution.
	Requester Key = "requester"

	// RequestID is the coordinator's correlation id for one instruction.
	RequestID Key = "request_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String reads a string value back out, returning "" when absent.
func String(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
