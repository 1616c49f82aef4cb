package auth

import (
	"context"

	"github.com/google/uuid"
)

// Common context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var (
	userIDKey            = contextKey{"user-id"}
	accessTokenClaimsKey = contextKey{"access-token-claims"}
)

func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func ContextUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func ContextWithAccessTokenClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	return context.WithValue(ctx, accessTokenClaimsKey, claims)
}

func ContextAccessTokenClaims(ctx context.Context) (*AccessTokenClaims, bool) {
	claims, ok := ctx.Value(accessTokenClaimsKey).(*AccessTokenClaims)
	return claims, ok
}
