package tagging

import "context"

// Repo defines persistence for tags, rules and tag assignments.
type Repo interface {
	CreateTag(ctx context.Context, tag Tag) error
	ListTags(ctx context.Context, organizationID string) ([]Tag, error)

	CreateRule(ctx context.Context, rule Rule) error
	ListEnabledRules(ctx context.Context, organizationID string) ([]Rule, error)
	ListRules(ctx context.Context, organizationID string) ([]Rule, error)

	AssignTag(ctx context.Context, documentID, tagID string) error
	ListDocumentTagIDs(ctx context.Context, documentID string) ([]string, error)
	RemoveAllFromDocument(ctx context.Context, documentID string) error
}
