package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/foliokit/folio/pkg/jwtx"
	"github.com/foliokit/folio/pkg/slogx"
)

// SessionCookieName is the cookie the token may also travel in. The cookie
// lifetime is client convenience only; the token's embedded expiry governs.
const SessionCookieName = "folio_token"

// IdentityLoader resolves a verified token subject to a live caller identity.
// It must fail when the user no longer exists (deleted after token issuance).
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID string) (Identity, error)
}

// AuthnMiddleware gates protected requests. A missing, malformed, or expired
// credential is rejected with a single 401 class: callers cannot tell expired
// from forged, so signing details never leak.
func AuthnMiddleware(v jwtx.Verifier, loader IdentityLoader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := bearerToken(r)
			if raw == "" {
				writeUnauthenticated(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				writeUnauthenticated(w, "invalid or expired token")
				return
			}

			identity, err := loader.LoadIdentity(ctx, claims.Subject)
			if err != nil {
				log.Warn("token subject no longer resolvable", "user_id", claims.Subject)
				writeUnauthenticated(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(ctx, identity)))
		})
	}
}

// bearerToken extracts the credential from the Authorization header, falling
// back to the session cookie.
func bearerToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func writeUnauthenticated(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthenticated", desc)
}
