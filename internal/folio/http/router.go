package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/pkg/httpx"
	"github.com/foliokit/folio/pkg/jwtx"
	"github.com/foliokit/folio/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	adminPolicy *httpx.NetworkPolicy
	tokenTTL    time.Duration

	ProvisionService *service.ProvisionService
	InviteService    *service.InviteService
	UserService      *service.UserService
	PortfolioService *service.PortfolioService
	ProjectService   *service.ProjectService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	adminPolicy *httpx.NetworkPolicy,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		adminPolicy:  adminPolicy,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerPortfolios()
	r.registerProjects()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn verifies the session token and resolves the caller against the store.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.UserService)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Provision: r.ProvisionService,
		Users:     r.UserService,
		TokenTTL:  r.tokenTTL,
	}

	// Credential endpoints - strict rate limit by IP (brute force prevention)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGetProfile),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /api/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateProfile),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	invites := &InviteHandler{Invites: r.InviteService}
	users := &AdminUsersHandler{
		Provision: r.ProvisionService,
		Users:     r.UserService,
	}

	// Every /api/admin route sits behind the optional network policy; the
	// authenticated ones additionally require the admin role.
	netpolicy := r.adminPolicy.Middleware()
	adminChain := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			netpolicy,
			r.authn(),
			httpx.RequireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /api/admin/invite", adminChain(http.HandlerFunc(invites.HandleMint)))
	r.Mux.Handle("GET /api/admin/invites", adminChain(http.HandlerFunc(invites.HandleList)))

	// Invite redemption is the one public admin route: the code is the
	// credential. Strict IP limit instead of a session.
	r.Mux.Handle("POST /api/admin/create-with-invite",
		httpx.Chain(http.HandlerFunc(invites.HandleRedeem),
			netpolicy,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/admin/create", adminChain(http.HandlerFunc(users.HandleCreate)))
	r.Mux.Handle("GET /api/admin/users", adminChain(http.HandlerFunc(users.HandleList)))
	r.Mux.Handle("PUT /api/admin/user/{id}", adminChain(http.HandlerFunc(users.HandleUpdate)))
	r.Mux.Handle("DELETE /api/admin/user/{id}", adminChain(http.HandlerFunc(users.HandleDelete)))
}

func (r *Router) registerPortfolios() {
	h := &PortfolioHandler{Portfolios: r.PortfolioService}

	r.Mux.Handle("POST /api/portfolio",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Public gallery reads
	r.Mux.Handle("GET /api/portfolio",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/portfolio/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGetByID),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// "me" is a literal segment, so it wins over the {id} pattern above.
	r.Mux.Handle("GET /api/portfolio/me",
		httpx.Chain(http.HandlerFunc(h.HandleGetMine),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /api/portfolio/me",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateMine),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/portfolio/me",
		httpx.Chain(http.HandlerFunc(h.HandleDeleteMine),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Admin moderation path
	r.Mux.Handle("DELETE /api/portfolio/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDeleteByID),
			r.authn(),
			httpx.RequireAdmin(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProjects() {
	h := &ProjectHandler{Projects: r.ProjectService}

	secured := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /api/projects", secured(h.HandleCreate))
	r.Mux.Handle("GET /api/projects", secured(h.HandleList))
	r.Mux.Handle("GET /api/projects/{id}", secured(h.HandleGet))
	r.Mux.Handle("PUT /api/projects/{id}", secured(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/projects/{id}", secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
