package auth

import (
	"context"

	"github.com/nickabs/shopfront/internal/ui/types"
)

// context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var sessionKey = contextKey{"session"}

func ContextWithSession(ctx context.Context, session *types.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ContextSession returns the signed-in user's session, if any
func ContextSession(ctx context.Context) (*types.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*types.Session)
	return session, ok && session != nil
}
