package tagging

import "time"

// Tag is an organization-scoped label that can be attached to documents.
type Tag struct {
	ID             string
	OrganizationID string
	Name           string
	Color          string
	CreatedAt      time.Time
}

// Condition fields.
const (
	FieldName     = "name"
	FieldContent  = "content"
	FieldMimeType = "mime_type"
)

// Condition operators.
const (
	OperatorEqual       = "equal"
	OperatorNotEqual    = "not-equal"
	OperatorContains    = "contains"
	OperatorNotContains = "not-contains"
	OperatorStartsWith  = "starts-with"
	OperatorEndsWith    = "ends-with"
)

// Condition is a single predicate over a document field.
type Condition struct {
	Field    string
	Operator string
	Value    string
}

// Rule attaches tags to documents whose fields satisfy every condition.
type Rule struct {
	ID             string
	OrganizationID string
	Name           string
	Enabled        bool
	Conditions     []Condition
	TagIDs         []string
	CreatedAt      time.Time
}
