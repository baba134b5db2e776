package httpx

import "context"

// Identity is the resolved caller attached to the request context by the
// authentication middleware. It is a value, not a pointer: downstream handlers
// get an immutable copy instead of a shared mutable request object.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == "admin" }

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

func contextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}
