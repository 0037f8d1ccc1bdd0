// Bearer JWT instruction auth.
// Coordinators sign each instruction with a shared secret; when a secret is
// configured, every action route requires a valid token and the requester
// identity is injected into context. With no secret configured the middleware
// passes everything through, matching deployments where the platform itself
// authenticates callers.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/peterholko-pingidentity/action-agent/internal/api/ctxkeys"
	pkgauth "github.com/peterholko-pingidentity/action-agent/pkg/auth"
)

// InstructionAuth validates the Bearer token against secret and injects the
// requester and request id into context. An empty secret disables the check.
func InstructionAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := extractBearerToken(r)
			if tokenString == "" {
				writeUnauthorized(w, "missing or invalid Authorization header")
				return
			}

			claims, err := pkgauth.ParseInstruction(secret, tokenString)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := r.Context()
			ctx = ctxkeys.WithValue(ctx, ctxkeys.Requester, claims.Requester)
			ctx = ctxkeys.WithValue(ctx, ctxkeys.RequestID, claims.RequestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if the header is missing, wrong scheme, or empty.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeUnauthorized writes a 401 JSON response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
