package uuidx

import "github.com/google/uuid"

// New returns a fresh version 7 UUID. V7 identifiers sort by creation
// time, which keeps message and run ids naturally ordered.
// It panics if the UUID generation fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a fresh version 7 UUID rendered as a string.
func NewString() string {
	return New().String()
}
