package documents

import "errors"

var (
	// ErrDocumentNotFound is returned when no document matches the lookup.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentAlreadyExists is returned when a live document with the same
	// content hash already exists in the organization.
	ErrDocumentAlreadyExists = errors.New("document already exists")
	// ErrDocumentNotDeleted is returned when a trash-only operation targets a
	// document that is not in the trash.
	ErrDocumentNotDeleted = errors.New("document is not deleted")
	// ErrInvalidInput is returned for malformed create requests.
	ErrInvalidInput = errors.New("invalid input")
)
