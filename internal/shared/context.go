package shared

import "context"

// Identity is the lightweight user stub attached to the request context by
// the identity middleware. It mirrors what the identity cookies carry and is
// never authoritative: protected handlers must re-load the full user record
// before an authorization check.
type Identity struct {
	UserID    int64
	SessionID string
	Email     string
	FirstName string
	LastName  string
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity stub in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity stub from context. A nil result
// means the request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
