// Package http is the service's HTTP boundary: request decoding and
// validation, the stable error envelope, and route wiring.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/pkg/httpx"
	"github.com/foliokit/folio/pkg/slogx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON parses and validates a request body. On failure it writes the
// validation_failed envelope and returns ok=false; the handler just returns.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid JSON body")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return req, false
	}
	return req, true
}

// validationMessage flattens the first field error into something readable.
// Full error lists leak struct internals, one field at a time is enough.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid field: " + fe.Field()
	}
	return "request validation failed"
}

// mapServiceError translates service sentinels into the error envelope. Raw
// store errors never reach the client; anything unrecognised is a 500.
func mapServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusBadRequest, "duplicate_email", "email is already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrInviteInvalid):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_invite", "invite code is invalid or expired")
	case errors.Is(err, service.ErrPortfolioExists):
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "portfolio already exists")
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid role")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		log.Error("request failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

// requireIdentity fetches the caller identity set by the auth middleware.
// Routes using it are always behind AuthnMiddleware; the guard is for wiring
// mistakes, not callers.
func requireIdentity(w http.ResponseWriter, r *http.Request) (httpx.Identity, bool) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return httpx.Identity{}, false
	}
	return id, true
}

func logFrom(r *http.Request) *slog.Logger { return slogx.FromContext(r.Context()) }

// setSessionCookie mirrors the token into a cookie for browser clients. The
// MaxAge is client housekeeping only; the embedded exp governs validity.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type userPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserPayload(u domain.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type authResponse struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

type invitePayload struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	CreatedByName  string     `json:"created_by_name,omitempty"`
	CreatedByEmail string     `json:"created_by_email,omitempty"`
	IsUsed         bool       `json:"is_used"`
	UsedByName     string     `json:"used_by_name,omitempty"`
	UsedByEmail    string     `json:"used_by_email,omitempty"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toInvitePayload(d service.InviteDetail) invitePayload {
	return invitePayload{
		ID:             d.ID,
		Code:           d.Code,
		CreatedByName:  d.CreatedByName,
		CreatedByEmail: d.CreatedByEmail,
		IsUsed:         d.IsUsed,
		UsedByName:     d.UsedByName,
		UsedByEmail:    d.UsedByEmail,
		UsedAt:         d.UsedAt,
		ExpiresAt:      d.ExpiresAt,
		CreatedAt:      d.CreatedAt,
	}
}

type portfolioPayload struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Profession    string    `json:"profession,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	ProfileImage  string    `json:"profile_image,omitempty"`
	ContactInfo   string    `json:"contact_info,omitempty"`
	Skills        []string  `json:"skills"`
	SocialLinks   []string  `json:"social_links"`
	TemplateStyle string    `json:"template_style"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPortfolioPayload(p domain.Portfolio) portfolioPayload {
	return portfolioPayload{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Profession:    p.Profession,
		Bio:           p.Bio,
		ProfileImage:  p.ProfileImage,
		ContactInfo:   p.ContactInfo,
		Skills:        emptyIfNil(p.Skills),
		SocialLinks:   emptyIfNil(p.SocialLinks),
		TemplateStyle: p.TemplateStyle,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type projectPayload struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TechStack   []string  `json:"tech_stack"`
	ProjectLink string    `json:"project_link,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectPayload(p domain.Project) projectPayload {
	return projectPayload{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		TechStack:   emptyIfNil(p.TechStack),
		ProjectLink: p.ProjectLink,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// emptyIfNil keeps list fields serializing as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

type healthChecks struct {
	Database string `json:"database"`
}
