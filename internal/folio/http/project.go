package http

import (
	"net/http"

	"github.com/foliokit/folio/internal/folio/service"
	"github.com/foliokit/folio/pkg/httpx"
)

type projectRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	TechStack   []string `json:"tech_stack" validate:"omitempty,dive,max=100"`
	ProjectLink string   `json:"project_link" validate:"omitempty,url,max=500"`
	Image       string   `json:"image" validate:"max=500"`
}

func (r projectRequest) toInput() service.ProjectInput {
	return service.ProjectInput{
		Title:       r.Title,
		Description: r.Description,
		TechStack:   r.TechStack,
		ProjectLink: r.ProjectLink,
		Image:       r.Image,
	}
}

// ProjectHandler serves the owner-scoped project CRUD. Every route sits
// behind the auth middleware.
type ProjectHandler struct {
	Projects *service.ProjectService
}

func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, ok := decodeJSON[projectRequest](w, r)
	if !ok {
		return
	}

	p, err := h.Projects.Create(r.Context(), id.UserID, req.toInput())
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProjectPayload(p))
}

func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	projects, err := h.Projects.List(r.Context(), id.UserID)
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	payload := make([]projectPayload, 0, len(projects))
	for _, p := range projects {
		payload = append(payload, toProjectPayload(p))
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	p, err := h.Projects.Get(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProjectPayload(p))
}

func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, ok := decodeJSON[projectRequest](w, r)
	if !ok {
		return
	}

	p, err := h.Projects.Update(r.Context(), id.UserID, r.PathValue("id"), req.toInput())
	if err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProjectPayload(p))
}

func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.Projects.Delete(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		mapServiceError(w, logFrom(r), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
