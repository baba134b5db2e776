package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foliokit/folio/pkg/httpx"
	"github.com/foliokit/folio/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type stubLoader struct {
	identities map[string]httpx.Identity
}

func (l *stubLoader) LoadIdentity(_ context.Context, userID string) (httpx.Identity, error) {
	id, ok := l.identities[userID]
	if !ok {
		return httpx.Identity{}, errors.New("no such user")
	}
	return id, nil
}

func newAuthFixture(t *testing.T) (*jwtx.HS256, *stubLoader) {
	t.Helper()
	h, err := jwtx.NewHS256(testSecret, "folio")
	require.NoError(t, err)
	loader := &stubLoader{identities: map[string]httpx.Identity{
		"01USER":  {UserID: "01USER", Role: "user"},
		"01ADMIN": {UserID: "01ADMIN", Role: "admin"},
	}}
	return h, loader
}

func signToken(t *testing.T, h *jwtx.HS256, userID, role string, ttl time.Duration) string {
	t.Helper()
	token, err := h.Sign(jwtx.NewSessionClaims(userID, role, "folio", ttl, time.Now().UTC()))
	require.NoError(t, err)
	return token
}

func echoIdentity(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.IdentityFromContext(r.Context())
		require.True(t, ok)
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"user_id": id.UserID, "role": id.Role})
	})
}

func TestAuthnMiddleware(t *testing.T) {
	h, loader := newAuthFixture(t)
	handler := httpx.Chain(echoIdentity(t), httpx.AuthnMiddleware(h, loader))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, h, "01USER", "user", -time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired and malformed look the same", func(t *testing.T) {
		expired := httptest.NewRequest(http.MethodGet, "/", nil)
		expired.Header.Set("Authorization", "Bearer "+signToken(t, h, "01USER", "user", -time.Hour))
		expiredRec := httptest.NewRecorder()
		handler.ServeHTTP(expiredRec, expired)

		malformed := httptest.NewRequest(http.MethodGet, "/", nil)
		malformed.Header.Set("Authorization", "Bearer junk")
		malformedRec := httptest.NewRecorder()
		handler.ServeHTTP(malformedRec, malformed)

		require.Equal(t, expiredRec.Code, malformedRec.Code)
		require.Equal(t, expiredRec.Body.String(), malformedRec.Body.String())
	})

	t.Run("user deleted after issuance", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, h, "01GONE", "user", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token via header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, h, "01USER", "user", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "01USER")
	})

	t.Run("valid token via cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{
			Name:  httpx.SessionCookieName,
			Value: signToken(t, h, "01USER", "user", time.Hour),
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	h, loader := newAuthFixture(t)
	handler := httpx.Chain(echoIdentity(t),
		httpx.AuthnMiddleware(h, loader),
		httpx.RequireAdmin(),
	)

	t.Run("non-admin gets 403, not 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, h, "01USER", "user", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "forbidden")
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, h, "01ADMIN", "admin", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no identity gets 401", func(t *testing.T) {
		bare := httpx.Chain(echoIdentity(t), httpx.RequireAdmin())
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRoleFromStoreWinsOverClaims(t *testing.T) {
	// A stale token minted while the user was still admin must not grant
	// admin once the store says otherwise.
	h, loader := newAuthFixture(t)
	loader.identities["01DEMOTED"] = httpx.Identity{UserID: "01DEMOTED", Role: "user"}

	handler := httpx.Chain(echoIdentity(t),
		httpx.AuthnMiddleware(h, loader),
		httpx.RequireAdmin(),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, h, "01DEMOTED", "admin", time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
