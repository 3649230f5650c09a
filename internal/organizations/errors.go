package organizations

import "errors"

var (
	ErrNotFound      = errors.New("organization not found")
	ErrQuotaExceeded = errors.New("organization document quota exceeded")
)
