package documents

import "time"

// Document represents a stored file owned by an organization. Content holds
// the extracted plain text used for search; the raw bytes live in object
// storage under StorageKey.
type Document struct {
	ID             string
	OrganizationID string
	Name           string
	OriginalName   string
	MimeType       string
	SizeBytes      int64
	Content        string
	ContentHash    string
	StorageKey     string
	CreatedBy      string
	IsDeleted      bool
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
