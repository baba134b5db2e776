package http

import (
	"net/http"
	"time"

	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/pkg/httpx"
	"github.com/foliokit/folio/pkg/jwtx"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// AuthHandler covers registration, login and profile self-service.
type AuthHandler struct {
	Provision *service.ProvisionService
	Users     *service.UserService
	TokenTTL  time.Duration
}

func (h *AuthHandler) cookieTTL() time.Duration {
	if h.TokenTTL > 0 {
		return h.TokenTTL
	}
	return jwtx.DefaultSessionTTL
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[registerRequest](w, r)
	if !ok {
		return
	}

	user, token, err := h.Provision.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	setSessionCookie(w, token, h.cookieTTL())
	httpx.WriteJSON(w, http.StatusCreated, authResponse{
		User:  toUserPayload(user),
		Token: token,
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[loginRequest](w, r)
	if !ok {
		return
	}

	user, token, err := h.Provision.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	setSessionCookie(w, token, h.cookieTTL())
	httpx.WriteJSON(w, http.StatusOK, authResponse{
		User:  toUserPayload(user),
		Token: token,
	})
}

func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.Users.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserPayload(user))
}

func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, ok := decodeJSON[profileUpdateRequest](w, r)
	if !ok {
		return
	}

	user, err := h.Users.UpdateProfile(r.Context(), id.UserID, service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserPayload(user))
}
