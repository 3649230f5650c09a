package tagging

import "errors"

var (
	// ErrTagNotFound is returned when a tag lookup matches nothing.
	ErrTagNotFound = errors.New("tag not found")
	// ErrTagAlreadyExists is returned when a tag name is already taken in the
	// organization.
	ErrTagAlreadyExists = errors.New("tag already exists")
	// ErrInvalidRule is returned for rules with no conditions or unknown
	// fields or operators.
	ErrInvalidRule = errors.New("invalid tagging rule")
)
