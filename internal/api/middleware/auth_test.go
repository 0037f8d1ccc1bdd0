// Covers: secret unset (pass-through), token absent, invalid, valid - and
// context injection.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/peterholko-pingidentity/action-agent/internal/api/ctxkeys"
	pkgauth "github.com/peterholko-pingidentity/action-agent/pkg/auth"
)

var testSecret = []byte("test-secret-32-bytes-minimum-ok!")

// ===== HELPER =====

// echoHandler records the context values it saw.
type echoHandler struct {
	called    bool
	requester string
	requestID string
}

func (h *echoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.requester = ctxkeys.String(r.Context(), ctxkeys.Requester)
	h.requestID = ctxkeys.String(r.Context(), ctxkeys.RequestID)
	w.WriteHeader(http.StatusOK)
}

func serve(t *testing.T, secret []byte, authorization string) (*httptest.ResponseRecorder, *echoHandler) {
	t.Helper()

	next := &echoHandler{}
	handler := InstructionAuth(secret)(next)

	req := httptest.NewRequest(http.MethodPost, "/invoke", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, next
}

// ===== TESTS: SECRET UNSET =====

func TestInstructionAuth_NoSecretPassesThrough(t *testing.T) {
	t.Parallel()

	rr, next := serve(t, nil, "")
	if rr.Code != http.StatusOK || !next.called {
		t.Fatalf("expected pass-through, status = %d called = %v", rr.Code, next.called)
	}
	if next.requester != "" {
		t.Errorf("requester = %q, want empty", next.requester)
	}
}

// ===== TESTS: TOKEN ABSENT OR MALFORMED =====

func TestInstructionAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	rr, next := serve(t, testSecret, "")
	if rr.Code != http.StatusUnauthorized || next.called {
		t.Fatalf("status = %d called = %v, want 401 and not called", rr.Code, next.called)
	}
}

func TestInstructionAuth_WrongScheme(t *testing.T) {
	t.Parallel()

	rr, next := serve(t, testSecret, "Basic dXNlcjpwYXNz")
	if rr.Code != http.StatusUnauthorized || next.called {
		t.Fatalf("status = %d called = %v, want 401 and not called", rr.Code, next.called)
	}
}

// ===== TESTS: INVALID TOKEN =====

func TestInstructionAuth_GarbageToken(t *testing.T) {
	t.Parallel()

	rr, next := serve(t, testSecret, "Bearer not.a.token")
	if rr.Code != http.StatusUnauthorized || next.called {
		t.Fatalf("status = %d called = %v, want 401 and not called", rr.Code, next.called)
	}
}

func TestInstructionAuth_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := pkgauth.SignInstruction([]byte("some-other-secret-entirely-here!"), "chat-agent", "req-1", time.Minute)
	if err != nil {
		t.Fatalf("SignInstruction: %v", err)
	}
	rr, next := serve(t, testSecret, "Bearer "+token)
	if rr.Code != http.StatusUnauthorized || next.called {
		t.Fatalf("status = %d called = %v, want 401 and not called", rr.Code, next.called)
	}
}

// ===== TESTS: VALID TOKEN =====

func TestInstructionAuth_ValidTokenInjectsContext(t *testing.T) {
	t.Parallel()

	token, err := pkgauth.SignInstruction(testSecret, "chat-agent", "req-42", time.Minute)
	if err != nil {
		t.Fatalf("SignInstruction: %v", err)
	}

	rr, next := serve(t, testSecret, "Bearer "+token)
	if rr.Code != http.StatusOK || !next.called {
		t.Fatalf("status = %d called = %v", rr.Code, next.called)
	}
	if next.requester != "chat-agent" {
		t.Errorf("requester = %q, want chat-agent", next.requester)
	}
	if next.requestID != "req-42" {
		t.Errorf("request id = %q, want req-42", next.requestID)
	}
}
