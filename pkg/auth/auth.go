// Package auth signs and verifies coordinator instructions as HS256 JWTs.
// The Action Agent accepts instructions from an upstream coordinator; when a
// shared secret is configured, every instruction must carry a bearer token
// identifying the requester. This is a leaf package with no domain dependencies,
// used by internal/api/middleware.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultInstructionTTL bounds how long a signed instruction stays valid.
const DefaultInstructionTTL = 15 * time.Minute

var (
	// ErrInvalidToken is returned for tokens that fail signature or claim checks.
	ErrInvalidToken = errors.New("invalid instruction token")
)

// Claims identify the party that authorized an instruction.
// Requester is the upstream actor (e.g. "hr@example.com"); RequestID is the
// coordinator's correlation id and ends up on the recorded run.
type Claims struct {
	Requester string `json:"requester"`
	RequestID string `json:"request_id,omitempty"`
	jwt.RegisteredClaims
}

// SignInstruction creates an HS256 token for a coordinator instruction.
// A non-positive ttl falls back to DefaultInstructionTTL.
func SignInstruction(secret []byte, requester, requestID string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("sign instruction: empty secret")
	}
	if ttl <= 0 {
		ttl = DefaultInstructionTTL
	}

	now := time.Now()
	claims := Claims{
		Requester: requester,
		RequestID: requestID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign instruction: %w", err)
	}
	return signed, nil
}

// ParseInstruction validates an HS256 token and returns its claims.
// Tokens signed with any other algorithm are rejected.
func ParseInstruction(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Requester == "" {
		return nil, fmt.Errorf("%w: missing requester claim", ErrInvalidToken)
	}
	return claims, nil
}
