package httpx

import "net/http"

// RequireAdmin rejects authenticated non-admin callers with 403. This is a
// distinct failure class from 401: the caller proved who they are, they just
// aren't allowed in.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeUnauthenticated(w, "missing bearer token")
				return
			}

			if !id.IsAdmin() {
				WriteError(w, http.StatusForbidden, "forbidden", "admin role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
