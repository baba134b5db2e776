package sqlite

import (
	"context"
	"time"

	"github.com/foliokit/folio/internal/folio/domain"
)

type projectsRepo struct {
	db dbtx
}

const projectColumns = `id, user_id, title, description, tech_stack, project_link,
	image, created_at, updated_at`

func scanProject(row interface{ Scan(dest ...any) error }) (domain.Project, error) {
	var (
		p     domain.Project
		stack string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &stack,
		&p.ProjectLink, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Project{}, err
	}
	if p.TechStack, err = decodeList(stack); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (r *projectsRepo) CreateProject(ctx context.Context, p domain.Project) error {
	stack, err := encodeList(p.TechStack)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, title, description, tech_stack,
		   project_link, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Title, p.Description, stack,
		p.ProjectLink, p.Image, now, now)
	return mapConstraint(err)
}

func (r *projectsRepo) GetProjectByID(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	return p, nil
}

func (r *projectsRepo) ListProjectsByUserID(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectsRepo) UpdateProject(ctx context.Context, p domain.Project) error {
	stack, err := encodeList(p.TechStack)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, tech_stack = ?, project_link = ?, image = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Description, stack, p.ProjectLink, p.Image, time.Now().UTC(), p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *projectsRepo) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
