package tagging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docvault-backend/internal/documents"
)

const defaultTagColor = "#808080"

// Service contains business logic for tags and tagging rules. It also
// implements the tag hooks the documents service calls during ingestion.
type Service struct {
	Repo Repo

	// GenerateID and Now are overridable for tests.
	GenerateID func() string
	Now        func() time.Time
}

// CreateTag creates an organization-scoped tag.
func (s *Service) CreateTag(ctx context.Context, organizationID, name, color string) (Tag, error) {
	if organizationID == "" || name == "" {
		return Tag{}, fmt.Errorf("%w: organization id and name required", ErrInvalidRule)
	}
	if color == "" {
		color = defaultTagColor
	}
	tag := Tag{
		ID:             s.newID(),
		OrganizationID: organizationID,
		Name:           name,
		Color:          color,
		CreatedAt:      s.now(),
	}
	if err := s.Repo.CreateTag(ctx, tag); err != nil {
		return Tag{}, err
	}
	return tag, nil
}

// ListTags returns the organization's tags.
func (s *Service) ListTags(ctx context.Context, organizationID string) ([]Tag, error) {
	return s.Repo.ListTags(ctx, organizationID)
}

// CreateRule creates a tagging rule. Rules need at least one condition and
// one tag, and every condition must use a known field and operator.
func (s *Service) CreateRule(ctx context.Context, organizationID, name string, enabled bool, conditions []Condition, tagIDs []string) (Rule, error) {
	if organizationID == "" || name == "" {
		return Rule{}, fmt.Errorf("%w: organization id and name required", ErrInvalidRule)
	}
	if len(conditions) == 0 {
		return Rule{}, fmt.Errorf("%w: at least one condition required", ErrInvalidRule)
	}
	if len(tagIDs) == 0 {
		return Rule{}, fmt.Errorf("%w: at least one tag required", ErrInvalidRule)
	}
	for _, cond := range conditions {
		if !validField(cond.Field) {
			return Rule{}, fmt.Errorf("%w: unknown field %q", ErrInvalidRule, cond.Field)
		}
		if !validOperator(cond.Operator) {
			return Rule{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidRule, cond.Operator)
		}
	}

	rule := Rule{
		ID:             s.newID(),
		OrganizationID: organizationID,
		Name:           name,
		Enabled:        enabled,
		Conditions:     conditions,
		TagIDs:         tagIDs,
		CreatedAt:      s.now(),
	}
	if err := s.Repo.CreateRule(ctx, rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// ListRules returns all of the organization's rules.
func (s *Service) ListRules(ctx context.Context, organizationID string) ([]Rule, error) {
	return s.Repo.ListRules(ctx, organizationID)
}

// DocumentTagIDs returns the tag IDs attached to a document.
func (s *Service) DocumentTagIDs(ctx context.Context, documentID string) ([]string, error) {
	return s.Repo.ListDocumentTagIDs(ctx, documentID)
}

// ApplyRules evaluates the organization's enabled rules against the document
// and assigns the tags of every matching rule.
func (s *Service) ApplyRules(ctx context.Context, doc documents.Document) error {
	rules, err := s.Repo.ListEnabledRules(ctx, doc.OrganizationID)
	if err != nil {
		return fmt.Errorf("list tagging rules: %w", err)
	}
	for _, rule := range rules {
		if !rule.Matches(doc) {
			continue
		}
		for _, tagID := range rule.TagIDs {
			if err := s.Repo.AssignTag(ctx, doc.ID, tagID); err != nil {
				return fmt.Errorf("assign tag %s: %w", tagID, err)
			}
		}
	}
	return nil
}

// RemoveAllFromDocument clears every tag assignment for a document.
func (s *Service) RemoveAllFromDocument(ctx context.Context, organizationID, documentID string) error {
	return s.Repo.RemoveAllFromDocument(ctx, documentID)
}

func validField(field string) bool {
	switch field {
	case FieldName, FieldContent, FieldMimeType:
		return true
	}
	return false
}

func validOperator(op string) bool {
	switch op {
	case OperatorEqual, OperatorNotEqual, OperatorContains, OperatorNotContains, OperatorStartsWith, OperatorEndsWith:
		return true
	}
	return false
}

func (s *Service) newID() string {
	if s.GenerateID != nil {
		return s.GenerateID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

var _ documents.Tagger = (*Service)(nil)
