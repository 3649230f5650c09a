package tagging

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu          sync.RWMutex
	tags        map[string][]Tag           // organizationID -> tags
	rules       map[string][]Rule          // organizationID -> rules
	assignments map[string]map[string]bool // documentID -> tagID set
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tags:        make(map[string][]Tag),
		rules:       make(map[string][]Rule),
		assignments: make(map[string]map[string]bool),
	}
}

// CreateTag stores a tag, enforcing per-organization name uniqueness.
func (r *MemoryRepo) CreateTag(ctx context.Context, tag Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tags[tag.OrganizationID] {
		if existing.Name == tag.Name {
			return ErrTagAlreadyExists
		}
	}
	r.tags[tag.OrganizationID] = append(r.tags[tag.OrganizationID], tag)
	return nil
}

// ListTags returns the organization's tags sorted by name.
func (r *MemoryRepo) ListTags(ctx context.Context, organizationID string) ([]Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Tag(nil), r.tags[organizationID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CreateRule stores a rule.
func (r *MemoryRepo) CreateRule(ctx context.Context, rule Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.OrganizationID] = append(r.rules[rule.OrganizationID], rule)
	return nil
}

// ListEnabledRules returns the organization's enabled rules.
func (r *MemoryRepo) ListEnabledRules(ctx context.Context, organizationID string) ([]Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Rule
	for _, rule := range r.rules[organizationID] {
		if rule.Enabled {
			out = append(out, rule)
		}
	}
	return out, nil
}

// ListRules returns all of the organization's rules.
func (r *MemoryRepo) ListRules(ctx context.Context, organizationID string) ([]Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Rule(nil), r.rules[organizationID]...), nil
}

// AssignTag attaches a tag to a document. Assigning twice is a no-op.
func (r *MemoryRepo) AssignTag(ctx context.Context, documentID, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.assignments[documentID]
	if set == nil {
		set = make(map[string]bool)
		r.assignments[documentID] = set
	}
	set[tagID] = true
	return nil
}

// ListDocumentTagIDs returns the tag IDs attached to a document, sorted.
func (r *MemoryRepo) ListDocumentTagIDs(ctx context.Context, documentID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for tagID := range r.assignments[documentID] {
		out = append(out, tagID)
	}
	sort.Strings(out)
	return out, nil
}

// RemoveAllFromDocument clears every tag assignment for a document.
func (r *MemoryRepo) RemoveAllFromDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, documentID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
