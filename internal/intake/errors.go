package intake

import "errors"

var (
	// ErrIntakeEmailNotFound is returned when no intake address matches the
	// lookup.
	ErrIntakeEmailNotFound = errors.New("intake email not found")
	// ErrIntakeLimitReached is returned when the organization's plan does not
	// allow another intake address.
	ErrIntakeLimitReached = errors.New("intake email limit reached")
)
