package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/internal/folio/store/drivers/sqlite"
	"github.com/foliokit/folio/pkg/cryptox"
	"github.com/foliokit/folio/pkg/httpx"
	"github.com/foliokit/folio/pkg/idx"
	"github.com/foliokit/folio/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testHash = cryptox.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1}

func newTestRouter(t *testing.T, adminRanges []string) (*Router, store.Store) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "folio_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "folio")
	require.NoError(t, err)

	policy, err := httpx.ParseNetworkPolicy(adminRanges)
	require.NoError(t, err)

	router := NewRouter(signer, "test", st, policy, time.Hour, slog.New(slog.DiscardHandler))
	router.ProvisionService = &service.ProvisionService{
		Store:    st,
		Signer:   signer,
		Hash:     testHash,
		Issuer:   "folio",
		TokenTTL: time.Hour,
	}
	router.InviteService = &service.InviteService{Store: st, Hash: testHash, DefaultTTL: 24 * time.Hour}
	router.UserService = &service.UserService{Store: st, Hash: testHash}
	router.PortfolioService = &service.PortfolioService{Store: st}
	router.ProjectService = &service.ProjectService{Store: st}
	router.ApplyRoutes()

	return router, st
}

// Unique client IPs per request keep the per-IP rate limiter out of the way.
var ipCounter atomic.Int64

func doJSON(t *testing.T, router *Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = fmt.Sprintf("10.1.%d.%d:40000",
		ipCounter.Add(1)/250%250, ipCounter.Load()%250)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func seedAdminUser(t *testing.T, st store.Store) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword("correct horse battery", testHash)
	require.NoError(t, err)

	admin := domain.User{
		ID:           idx.New().String(),
		Name:         "Root",
		Email:        "root@example.com",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), admin))
	return admin
}

func loginToken(t *testing.T, router *Router, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[authResponse](t, rec).Token
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[authResponse](t, rec)
	require.Equal(t, "user", created.User.Role)
	require.NotEmpty(t, created.Token)

	t.Run("register sets the session cookie", func(t *testing.T) {
		var found bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == httpx.SessionCookieName {
				found = true
				require.True(t, c.HttpOnly)
				require.Equal(t, created.Token, c.Value)
			}
		}
		require.True(t, found)
	})

	t.Run("profile with bearer token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", created.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ada@example.com", decodeBody[userPayload](t, rec).Email)
	})

	t.Run("profile without token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "unauthenticated", decodeBody[httpx.ErrorResponse](t, rec).Error)
	})

	t.Run("profile update", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/auth/profile", created.Token, map[string]string{
			"name": "Ada Lovelace",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Ada Lovelace", decodeBody[userPayload](t, rec).Name)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_credentials", decodeBody[httpx.ErrorResponse](t, rec).Error)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Imposter",
			"email":    "ada@example.com",
			"password": "another password",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "duplicate_email", decodeBody[httpx.ErrorResponse](t, rec).Error)
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bad",
			"email":    "not-an-email",
			"password": "correct horse battery",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "validation_failed", decodeBody[httpx.ErrorResponse](t, rec).Error)
	})
}

func TestCookieAuthFallback(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	seedAdminUser(t, router.store)
	token := loginToken(t, router, "root@example.com", "correct horse battery")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.RemoteAddr = "10.9.9.9:40000"
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: token})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminInviteFlow(t *testing.T) {
	router, st := newTestRouter(t, nil)
	seedAdminUser(t, st)
	adminToken := loginToken(t, router, "root@example.com", "correct horse battery")

	t.Run("mint requires admin", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Plain",
			"email":    "plain@example.com",
			"password": "correct horse battery",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		userToken := decodeBody[authResponse](t, rec).Token

		rec = doJSON(t, router, http.MethodPost, "/api/admin/invite", userToken, map[string]any{})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "forbidden", decodeBody[httpx.ErrorResponse](t, rec).Error)

		rec = doJSON(t, router, http.MethodPost, "/api/admin/invite", "", map[string]any{})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	rec := doJSON(t, router, http.MethodPost, "/api/admin/invite", adminToken, map[string]any{
		"expiresInHours": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	minted := decodeBody[inviteMintResponse](t, rec)
	require.Len(t, minted.InviteCode, 32)

	t.Run("invite wire names are camelCase", func(t *testing.T) {
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Contains(t, raw, "inviteCode")
		require.Contains(t, raw, "expiresAt")
	})

	t.Run("redeem creates an admin", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/admin/create-with-invite", "", map[string]string{
			"name":       "Second Admin",
			"email":      "second@example.com",
			"password":   "correct horse battery",
			"inviteCode": minted.InviteCode,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "admin", decodeBody[userPayload](t, rec).Role)
	})

	t.Run("used code rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/admin/create-with-invite", "", map[string]string{
			"name":       "Third",
			"email":      "third@example.com",
			"password":   "correct horse battery",
			"inviteCode": minted.InviteCode,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_invite", decodeBody[httpx.ErrorResponse](t, rec).Error)
	})

	t.Run("ledger listing", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/admin/invites", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		invites := decodeBody[[]invitePayload](t, rec)
		require.Len(t, invites, 1)
		require.True(t, invites[0].IsUsed)
		require.Equal(t, "second@example.com", invites[0].UsedByEmail)
	})

	t.Run("direct admin creation", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/admin/create", adminToken, map[string]string{
			"name":     "Direct",
			"email":    "direct@example.com",
			"password": "correct horse battery",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "admin", decodeBody[userPayload](t, rec).Role)
	})
}

func TestAdminNetworkPolicy(t *testing.T) {
	router, st := newTestRouter(t, []string{"127.0.0.0/8"})
	seedAdminUser(t, st)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/invite", bytes.NewBufferString("{}"))
	req.RemoteAddr = "203.0.113.5:40000"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	t.Run("allowed range reaches auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/invite", bytes.NewBufferString("{}"))
		req.RemoteAddr = "127.0.0.1:40000"

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		// Past the network gate, it fails on the missing session instead.
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminUserManagement(t *testing.T) {
	router, st := newTestRouter(t, nil)
	seedAdminUser(t, st)
	adminToken := loginToken(t, router, "root@example.com", "correct horse battery")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Target",
		"email":    "target@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	target := decodeBody[authResponse](t, rec).User

	t.Run("list users", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/admin/users", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeBody[[]userPayload](t, rec), 2)
	})

	t.Run("promote then delete", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/admin/user/"+target.ID, adminToken, map[string]string{
			"role": "admin",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "admin", decodeBody[userPayload](t, rec).Role)

		rec = doJSON(t, router, http.MethodDelete, "/api/admin/user/"+target.ID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, router, http.MethodDelete, "/api/admin/user/"+target.ID, adminToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "not_found", decodeBody[httpx.ErrorResponse](t, rec).Error)
	})
}

func TestPortfolioRoutes(t *testing.T) {
	router, st := newTestRouter(t, nil)
	seedAdminUser(t, st)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Owner",
		"email":    "owner@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ownerToken := decodeBody[authResponse](t, rec).Token

	rec = doJSON(t, router, http.MethodPost, "/api/portfolio", ownerToken, map[string]any{
		"name":   "Owner",
		"skills": []string{"Go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[portfolioPayload](t, rec)

	t.Run("public gallery needs no auth", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/portfolio", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeBody[[]portfolioPayload](t, rec), 1)

		rec = doJSON(t, router, http.MethodGet, "/api/portfolio/"+created.ID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("me routes need auth", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/portfolio/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/portfolio/me", ownerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, created.ID, decodeBody[portfolioPayload](t, rec).ID)
	})

	t.Run("admin moderation delete", func(t *testing.T) {
		adminToken := loginToken(t, router, "root@example.com", "correct horse battery")

		rec := doJSON(t, router, http.MethodDelete, "/api/portfolio/"+created.ID, ownerToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = doJSON(t, router, http.MethodDelete, "/api/portfolio/"+created.ID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}
