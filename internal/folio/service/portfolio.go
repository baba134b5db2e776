package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/foliokit/folio/internal/folio/domain"
	"github.com/foliokit/folio/internal/folio/store"
	"github.com/foliokit/folio/pkg/idx"
	"github.com/foliokit/folio/pkg/slogx"
)

var ErrPortfolioExists = errors.New("user already has a portfolio")

// PortfolioService manages the one-portfolio-per-user resource. Reads are
// public (the gallery); all writes are scoped to the owner except the admin
// delete-by-id path.
type PortfolioService struct {
	Store store.Store
}

// PortfolioInput carries the caller-editable fields.
type PortfolioInput struct {
	Name          string
	Profession    string
	Bio           string
	ProfileImage  string
	ContactInfo   string
	Skills        []string
	SocialLinks   []string
	TemplateStyle string
}

// Create makes the caller's portfolio. The user_id UNIQUE constraint is the
// one-per-user check.
func (s *PortfolioService) Create(
	ctx context.Context,
	userID string,
	in PortfolioInput,
) (domain.Portfolio, error) {
	log := slogx.FromContext(ctx)

	if in.TemplateStyle == "" {
		in.TemplateStyle = domain.DefaultTemplateStyle
	}

	p := domain.Portfolio{
		ID:            idx.New().String(),
		UserID:        userID,
		Name:          in.Name,
		Profession:    in.Profession,
		Bio:           in.Bio,
		ProfileImage:  in.ProfileImage,
		ContactInfo:   in.ContactInfo,
		Skills:        in.Skills,
		SocialLinks:   in.SocialLinks,
		TemplateStyle: in.TemplateStyle,
	}

	if err := s.Store.Portfolios().CreatePortfolio(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("portfolio creation attempted by user who already has one",
				slog.String("user_id", userID),
			)
			return domain.Portfolio{}, ErrPortfolioExists
		}
		log.Error("failed to create portfolio", slog.Any("error", err))
		return domain.Portfolio{}, err
	}

	log.Info("portfolio created",
		slog.String("portfolio_id", p.ID),
		slog.String("user_id", userID),
	)
	return p, nil
}

// GetMine returns the caller's portfolio.
func (s *PortfolioService) GetMine(ctx context.Context, userID string) (domain.Portfolio, error) {
	return s.Store.Portfolios().GetPortfolioByUserID(ctx, userID)
}

// GetByID returns any portfolio; used by the public detail page.
func (s *PortfolioService) GetByID(ctx context.Context, id string) (domain.Portfolio, error) {
	return s.Store.Portfolios().GetPortfolioByID(ctx, id)
}

// ListAll returns the public gallery, newest first.
func (s *PortfolioService) ListAll(ctx context.Context) ([]domain.Portfolio, error) {
	return s.Store.Portfolios().ListPortfolios(ctx)
}

// UpdateMine rewrites the caller's portfolio fields.
func (s *PortfolioService) UpdateMine(
	ctx context.Context,
	userID string,
	in PortfolioInput,
) (domain.Portfolio, error) {
	log := slogx.FromContext(ctx)

	p, err := s.Store.Portfolios().GetPortfolioByUserID(ctx, userID)
	if err != nil {
		return domain.Portfolio{}, err
	}

	p.Name = in.Name
	p.Profession = in.Profession
	p.Bio = in.Bio
	p.ProfileImage = in.ProfileImage
	p.ContactInfo = in.ContactInfo
	p.Skills = in.Skills
	p.SocialLinks = in.SocialLinks
	if in.TemplateStyle != "" {
		p.TemplateStyle = in.TemplateStyle
	}

	if err := s.Store.Portfolios().UpdatePortfolio(ctx, p); err != nil {
		log.Error("failed to update portfolio",
			slog.String("portfolio_id", p.ID),
			slog.Any("error", err),
		)
		return domain.Portfolio{}, err
	}

	log.Info("portfolio updated", slog.String("portfolio_id", p.ID))
	return p, nil
}

// DeleteMine removes the caller's portfolio.
func (s *PortfolioService) DeleteMine(ctx context.Context, userID string) error {
	return s.Store.Portfolios().DeletePortfolioByUserID(ctx, userID)
}

// Delete removes any portfolio by id (admin moderation path).
func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Portfolios().DeletePortfolio(ctx, id); err != nil {
		return err
	}

	log.Info("portfolio deleted by admin", slog.String("portfolio_id", id))
	return nil
}
