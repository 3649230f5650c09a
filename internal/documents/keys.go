package documents

import (
	"path"

	"github.com/google/uuid"
)

// GenerateDocumentID returns a new random document identifier.
func GenerateDocumentID() string {
	return uuid.NewString()
}

// BuildStorageKey derives the object storage key for a document. fileName
// must already be sanitized. The key is scoped by organization so
// storage-level listings and deletes stay within a tenant.
func BuildStorageKey(organizationID, documentID, fileName string) string {
	return path.Join(organizationID, documentID, fileName)
}
