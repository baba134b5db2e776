package domain

import "time"

// Project is a single work item shown on a user's portfolio. Projects are
// private to their owner; only the owner can list or mutate them.
type Project struct {
	ID          string
	UserID      string
	Title       string
	Description string
	TechStack   []string
	ProjectLink string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
