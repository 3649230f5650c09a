package tagging

import (
	"strings"

	"docvault-backend/internal/documents"
)

// Matches reports whether the condition holds for the document. Field values
// and condition values compare case-insensitively. Unknown fields and
// operators never match.
func (c Condition) Matches(doc documents.Document) bool {
	var field string
	switch c.Field {
	case FieldName:
		field = doc.Name
	case FieldContent:
		field = doc.Content
	case FieldMimeType:
		field = doc.MimeType
	default:
		return false
	}

	field = strings.ToLower(field)
	value := strings.ToLower(c.Value)

	switch c.Operator {
	case OperatorEqual:
		return field == value
	case OperatorNotEqual:
		return field != value
	case OperatorContains:
		return strings.Contains(field, value)
	case OperatorNotContains:
		return !strings.Contains(field, value)
	case OperatorStartsWith:
		return strings.HasPrefix(field, value)
	case OperatorEndsWith:
		return strings.HasSuffix(field, value)
	default:
		return false
	}
}

// Matches reports whether every condition of the rule holds for the
// document. A rule without conditions matches nothing rather than everything.
func (r Rule) Matches(doc documents.Document) bool {
	if len(r.Conditions) == 0 {
		return false
	}
	for _, cond := range r.Conditions {
		if !cond.Matches(doc) {
			return false
		}
	}
	return true
}
