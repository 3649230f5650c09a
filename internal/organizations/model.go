package organizations

import "time"

// Organization is a tenant owning documents, tags, and intake emails.
type Organization struct {
	ID        string
	Name      string
	PlanID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
