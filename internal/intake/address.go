package intake

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateEmailAddress returns a random address under the intake domain.
func GenerateEmailAddress(domain string) string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// fixed-width zero local part rather than panicking.
		return "00000000@" + domain
	}
	return hex.EncodeToString(b[:]) + "@" + domain
}

// NormalizeAddress lowercases and trims an email address for comparisons.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
