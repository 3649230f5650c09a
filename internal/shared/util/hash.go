package util

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HashBytes returns the hex-encoded SHA-256 digest of data. Used as the
// per-organization deduplication key for document content.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashReader returns the hex-encoded SHA-256 digest of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
