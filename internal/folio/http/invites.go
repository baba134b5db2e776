package http

import (
	"net/http"
	"time"

	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/pkg/httpx"
)

// The invite endpoints use camelCase wire names; the web client contract
// fixes them, unlike the snake_case used on the rest of the surface.

type inviteMintRequest struct {
	// ExpiresInHours overrides the default invite lifetime; 0 keeps it.
	ExpiresInHours int `json:"expiresInHours" validate:"omitempty,min=1,max=720"`
}

type inviteRedeemRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	InviteCode string `json:"inviteCode" validate:"required"`
}

type inviteMintResponse struct {
	InviteCode string    `json:"inviteCode"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// InviteHandler covers the admin provisioning ledger: minting and listing
// codes (admin-only) and redeeming one for a new admin account (public).
type InviteHandler struct {
	Invites *service.InviteService
}

func (h *InviteHandler) HandleMint(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, ok := decodeJSON[inviteMintRequest](w, r)
	if !ok {
		return
	}

	ttl := time.Duration(req.ExpiresInHours) * time.Hour
	invite, err := h.Invites.Mint(r.Context(), id.UserID, ttl)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inviteMintResponse{
		InviteCode: invite.Code,
		ExpiresAt:  invite.ExpiresAt,
	})
}

func (h *InviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	details, err := h.Invites.List(r.Context())
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	payload := make([]invitePayload, 0, len(details))
	for _, d := range details {
		payload = append(payload, toInvitePayload(d))
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *InviteHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[inviteRedeemRequest](w, r)
	if !ok {
		return
	}

	user, err := h.Invites.Redeem(r.Context(), req.InviteCode, req.Name, req.Email, req.Password)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserPayload(user))
}
