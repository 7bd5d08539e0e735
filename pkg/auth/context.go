package auth

import (
	"context"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for validated JWT claims.
const ClaimsKey contextKey = "auth_claims"

// ClaimsFromContext retrieves the validated claims from the request
// context. Returns nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsKey).(*Claims)
	return claims
}
