package service

import (
	"context"
	"log/slog"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/pkg/idx"
	"github.com/foliokit/folio/pkg/slogx"
)

// ProjectService manages a user's private project list. Every operation is
// scoped to the owner; a foreign project id reads as not found rather than
// forbidden, so ids can't be probed.
type ProjectService struct {
	Store store.Store
}

// ProjectInput carries the caller-editable fields.
type ProjectInput struct {
	Title       string
	Description string
	TechStack   []string
	ProjectLink string
	Image       string
}

func (s *ProjectService) Create(
	ctx context.Context,
	userID string,
	in ProjectInput,
) (domain.Project, error) {
	log := slogx.FromContext(ctx)

	p := domain.Project{
		ID:          idx.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		TechStack:   in.TechStack,
		ProjectLink: in.ProjectLink,
		Image:       in.Image,
	}

	if err := s.Store.Projects().CreateProject(ctx, p); err != nil {
		log.Error("failed to create project", slog.Any("error", err))
		return domain.Project{}, err
	}

	log.Info("project created",
		slog.String("project_id", p.ID),
		slog.String("user_id", userID),
	)
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.Store.Projects().ListProjectsByUserID(ctx, userID)
}

// Get returns the project only if the caller owns it.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (domain.Project, error) {
	p, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if p.UserID != userID {
		return domain.Project{}, store.ErrNotFound
	}
	return p, nil
}

func (s *ProjectService) Update(
	ctx context.Context,
	userID string,
	projectID string,
	in ProjectInput,
) (domain.Project, error) {
	log := slogx.FromContext(ctx)

	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return domain.Project{}, err
	}

	p.Title = in.Title
	p.Description = in.Description
	p.TechStack = in.TechStack
	p.ProjectLink = in.ProjectLink
	p.Image = in.Image

	if err := s.Store.Projects().UpdateProject(ctx, p); err != nil {
		log.Error("failed to update project",
			slog.String("project_id", projectID),
			slog.Any("error", err),
		)
		return domain.Project{}, err
	}

	log.Info("project updated", slog.String("project_id", projectID))
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	log := slogx.FromContext(ctx)

	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return err
	}
	if err := s.Store.Projects().DeleteProject(ctx, projectID); err != nil {
		return err
	}

	log.Info("project deleted", slog.String("project_id", projectID))
	return nil
}
