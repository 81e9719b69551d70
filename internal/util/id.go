package util

import "github.com/google/uuid"

// NewID returns an unguessable identifier for session tokens and
// OAuth state values.
func NewID() string {
	return uuid.NewString()
}
