package domain

import "time"

// Portfolio is the public-facing profile a user builds. One per user.
type Portfolio struct {
	ID            string
	UserID        string
	Name          string
	Profession    string
	Bio           string
	ProfileImage  string
	ContactInfo   string
	Skills        []string
	SocialLinks   []string
	TemplateStyle string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const DefaultTemplateStyle = "default"
