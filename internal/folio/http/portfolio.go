package http

import (
	"net/http"

	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/pkg/httpx"
)

type portfolioRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=100"`
	Profession    string   `json:"profession" validate:"max=100"`
	Bio           string   `json:"bio" validate:"max=2000"`
	ProfileImage  string   `json:"profile_image" validate:"max=500"`
	ContactInfo   string   `json:"contact_info" validate:"max=500"`
	Skills        []string `json:"skills" validate:"omitempty,dive,max=100"`
	SocialLinks   []string `json:"social_links" validate:"omitempty,dive,max=500"`
	TemplateStyle string   `json:"template_style" validate:"max=50"`
}

func (r portfolioRequest) toInput() service.PortfolioInput {
	return service.PortfolioInput{
		Name:          r.Name,
		Profession:    r.Profession,
		Bio:           r.Bio,
		ProfileImage:  r.ProfileImage,
		ContactInfo:   r.ContactInfo,
		Skills:        r.Skills,
		SocialLinks:   r.SocialLinks,
		TemplateStyle: r.TemplateStyle,
	}
}

// PortfolioHandler serves the public gallery reads and the owner-scoped
// writes, plus the admin delete-by-id moderation path.
type PortfolioHandler struct {
	Portfolios *service.PortfolioService
}

func (h *PortfolioHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, ok := decodeJSON[portfolioRequest](w, r)
	if !ok {
		return
	}

	p, err := h.Portfolios.Create(r.Context(), id.UserID, req.toInput())
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPortfolioPayload(p))
}

func (h *PortfolioHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.Portfolios.ListAll(r.Context())
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	payload := make([]portfolioPayload, 0, len(portfolios))
	for _, p := range portfolios {
		payload = append(payload, toPortfolioPayload(p))
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *PortfolioHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	p, err := h.Portfolios.GetMine(r.Context(), id.UserID)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPortfolioPayload(p))
}

func (h *PortfolioHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.Portfolios.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPortfolioPayload(p))
}

func (h *PortfolioHandler) HandleUpdateMine(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, ok := decodeJSON[portfolioRequest](w, r)
	if !ok {
		return
	}

	p, err := h.Portfolios.UpdateMine(r.Context(), id.UserID, req.toInput())
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPortfolioPayload(p))
}

func (h *PortfolioHandler) HandleDeleteMine(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.Portfolios.DeleteMine(r.Context(), id.UserID); err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PortfolioHandler) HandleDeleteByID(w http.ResponseWriter, r *http.Request) {
	if err := h.Portfolios.Delete(r.Context(), r.PathValue("id")); err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
