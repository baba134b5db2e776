package sqlite

import (
	"context"
	"time"

	"github.com/foliokit/folio/internal/folio/domain"
)

type portfoliosRepo struct {
	db dbtx
}

const portfolioColumns = `id, user_id, name, profession, bio, profile_image,
	contact_info, skills, social_links, template_style, created_at, updated_at`

func scanPortfolio(row interface{ Scan(dest ...any) error }) (domain.Portfolio, error) {
	var (
		p                  domain.Portfolio
		skills, socialRaws string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Profession, &p.Bio, &p.ProfileImage,
		&p.ContactInfo, &skills, &socialRaws, &p.TemplateStyle, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Portfolio{}, err
	}
	if p.Skills, err = decodeList(skills); err != nil {
		return domain.Portfolio{}, err
	}
	if p.SocialLinks, err = decodeList(socialRaws); err != nil {
		return domain.Portfolio{}, err
	}
	return p, nil
}

func (r *portfoliosRepo) CreatePortfolio(ctx context.Context, p domain.Portfolio) error {
	skills, err := encodeList(p.Skills)
	if err != nil {
		return err
	}
	social, err := encodeList(p.SocialLinks)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO portfolios (id, user_id, name, profession, bio, profile_image,
		   contact_info, skills, social_links, template_style, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.Profession, p.Bio, p.ProfileImage,
		p.ContactInfo, skills, social, p.TemplateStyle, now, now)
	return mapConstraint(err)
}

func (r *portfoliosRepo) GetPortfolioByID(ctx context.Context, id string) (domain.Portfolio, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE id = ?`, id)
	p, err := scanPortfolio(row)
	if err != nil {
		return domain.Portfolio{}, mapNotFound(err)
	}
	return p, nil
}

func (r *portfoliosRepo) GetPortfolioByUserID(ctx context.Context, userID string) (domain.Portfolio, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE user_id = ?`, userID)
	p, err := scanPortfolio(row)
	if err != nil {
		return domain.Portfolio{}, mapNotFound(err)
	}
	return p, nil
}

func (r *portfoliosRepo) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var portfolios []domain.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, rows.Err()
}

func (r *portfoliosRepo) UpdatePortfolio(ctx context.Context, p domain.Portfolio) error {
	skills, err := encodeList(p.Skills)
	if err != nil {
		return err
	}
	social, err := encodeList(p.SocialLinks)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE portfolios
		 SET name = ?, profession = ?, bio = ?, profile_image = ?, contact_info = ?,
		     skills = ?, social_links = ?, template_style = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Profession, p.Bio, p.ProfileImage, p.ContactInfo,
		skills, social, p.TemplateStyle, time.Now().UTC(), p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *portfoliosRepo) DeletePortfolio(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *portfoliosRepo) DeletePortfolioByUserID(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
