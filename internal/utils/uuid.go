package utils

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 string. It is used for trace IDs and
// idempotency keys, so lexical order roughly follows creation order.
func NewID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
