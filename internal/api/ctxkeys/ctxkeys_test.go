package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), Requester, "chat-agent")
	if got := String(ctx, Requester); got != "chat-agent" {
		t.Fatalf("expected chat-agent, got %q", got)
	}
}

func TestString_AbsentKey(t *testing.T) {
	t.Parallel()

	if got := String(context.Background(), RequestID); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestString_DoesNotCollideWithPlainStringKey(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "requester", "spoofed") //nolint:staticcheck
	if got := String(ctx, Requester); got != "" {
		t.Fatalf("typed key must not read plain string key, got %q", got)
	}
}
