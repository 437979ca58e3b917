package middleware

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
)

// ContextKey is a private type for context keys to avoid collisions.
type ContextKey string

// IdentityCtxKey holds the *domain.Identity attached by JWTAuth.
const IdentityCtxKey = ContextKey("identity")

func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityCtxKey, id)
}

// IdentityFromContext returns the authenticated caller, or nil.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(IdentityCtxKey).(*domain.Identity)
	return id
}
