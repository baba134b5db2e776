package http

import (
	"net/http"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/pkg/httpx"
)

type adminUserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=254"`
	Role  *string `json:"role" validate:"omitempty,oneof=user admin"`
}

// AdminUsersHandler is the admin user management surface: direct admin
// creation, listing, partial updates (including role changes) and deletion.
type AdminUsersHandler struct {
	Provision *service.ProvisionService
	Users     *service.UserService
}

func (h *AdminUsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[registerRequest](w, r)
	if !ok {
		return
	}

	user, err := h.Provision.CreateAdminDirect(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserPayload(user))
}

func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for _, u := range users {
		payload = append(payload, toUserPayload(u))
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *AdminUsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	req, ok := decodeJSON[adminUserUpdateRequest](w, r)
	if !ok {
		return
	}

	upd := service.AdminUserUpdate{
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		upd.Role = &role
	}

	user, err := h.Users.UpdateUser(r.Context(), userID, upd)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserPayload(user))
}

func (h *AdminUsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	if err := h.Users.DeleteUser(r.Context(), userID); err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
