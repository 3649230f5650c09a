package tagging

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateTag inserts a tag. A duplicate name within the organization maps to
// ErrTagAlreadyExists.
func (r *PGRepo) CreateTag(ctx context.Context, tag Tag) error {
	const query = `
INSERT INTO tags (id, organization_id, name, color, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, tag.ID, tag.OrganizationID, tag.Name, tag.Color, tag.CreatedAt)
	if isUniqueViolation(err) {
		return ErrTagAlreadyExists
	}
	return err
}

// ListTags returns the organization's tags sorted by name.
func (r *PGRepo) ListTags(ctx context.Context, organizationID string) ([]Tag, error) {
	const query = `
SELECT id, organization_id, name, color, created_at
FROM tags
WHERE organization_id = $1
ORDER BY name ASC`
	rows, err := r.DB.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.OrganizationID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

// CreateRule inserts a rule with its conditions and tag links in one
// transaction.
func (r *PGRepo) CreateRule(ctx context.Context, rule Rule) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const ruleQuery = `
INSERT INTO tagging_rules (id, organization_id, name, enabled, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, ruleQuery, rule.ID, rule.OrganizationID, rule.Name, rule.Enabled, rule.CreatedAt); err != nil {
		return err
	}

	const condQuery = `
INSERT INTO tagging_rule_conditions (id, rule_id, field, operator, value)
VALUES ($1, $2, $3, $4, $5)`
	for i, cond := range rule.Conditions {
		condID := fmt.Sprintf("%s-c%d", rule.ID, i)
		if _, err := tx.ExecContext(ctx, condQuery, condID, rule.ID, cond.Field, cond.Operator, cond.Value); err != nil {
			return err
		}
	}

	const tagQuery = `
INSERT INTO tagging_rule_tags (rule_id, tag_id)
VALUES ($1, $2)`
	for _, tagID := range rule.TagIDs {
		if _, err := tx.ExecContext(ctx, tagQuery, rule.ID, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListEnabledRules returns the organization's enabled rules with conditions
// and tag links attached.
func (r *PGRepo) ListEnabledRules(ctx context.Context, organizationID string) ([]Rule, error) {
	return r.listRules(ctx, organizationID, true)
}

// ListRules returns all of the organization's rules.
func (r *PGRepo) ListRules(ctx context.Context, organizationID string) ([]Rule, error) {
	return r.listRules(ctx, organizationID, false)
}

func (r *PGRepo) listRules(ctx context.Context, organizationID string, enabledOnly bool) ([]Rule, error) {
	query := `
SELECT id, organization_id, name, enabled, created_at
FROM tagging_rules
WHERE organization_id = $1`
	if enabledOnly {
		query += ` AND enabled`
	}
	query += `
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	byID := make(map[string]int)
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.OrganizationID, &rule.Name, &rule.Enabled, &rule.CreatedAt); err != nil {
			return nil, err
		}
		byID[rule.ID] = len(rules)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}

	const condQuery = `
SELECT c.rule_id, c.field, c.operator, c.value
FROM tagging_rule_conditions c
JOIN tagging_rules r ON r.id = c.rule_id
WHERE r.organization_id = $1
ORDER BY c.id ASC`
	condRows, err := r.DB.QueryContext(ctx, condQuery, organizationID)
	if err != nil {
		return nil, err
	}
	defer condRows.Close()
	for condRows.Next() {
		var ruleID string
		var cond Condition
		if err := condRows.Scan(&ruleID, &cond.Field, &cond.Operator, &cond.Value); err != nil {
			return nil, err
		}
		if i, ok := byID[ruleID]; ok {
			rules[i].Conditions = append(rules[i].Conditions, cond)
		}
	}
	if err := condRows.Err(); err != nil {
		return nil, err
	}

	const tagQuery = `
SELECT t.rule_id, t.tag_id
FROM tagging_rule_tags t
JOIN tagging_rules r ON r.id = t.rule_id
WHERE r.organization_id = $1
ORDER BY t.tag_id ASC`
	tagRows, err := r.DB.QueryContext(ctx, tagQuery, organizationID)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var ruleID, tagID string
		if err := tagRows.Scan(&ruleID, &tagID); err != nil {
			return nil, err
		}
		if i, ok := byID[ruleID]; ok {
			rules[i].TagIDs = append(rules[i].TagIDs, tagID)
		}
	}
	return rules, tagRows.Err()
}

// AssignTag attaches a tag to a document. Re-assigning is a no-op.
func (r *PGRepo) AssignTag(ctx context.Context, documentID, tagID string) error {
	const query = `
INSERT INTO document_tags (document_id, tag_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query, documentID, tagID)
	return err
}

// ListDocumentTagIDs returns the tag IDs attached to a document.
func (r *PGRepo) ListDocumentTagIDs(ctx context.Context, documentID string) ([]string, error) {
	const query = `
SELECT tag_id
FROM document_tags
WHERE document_id = $1
ORDER BY tag_id ASC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, err
		}
		out = append(out, tagID)
	}
	return out, rows.Err()
}

// RemoveAllFromDocument clears every tag assignment for a document.
func (r *PGRepo) RemoveAllFromDocument(ctx context.Context, documentID string) error {
	const query = `
DELETE FROM document_tags
WHERE document_id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repo = (*PGRepo)(nil)
