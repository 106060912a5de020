package domain

import (
	"context"
	"time"
)

// User is a chat participant, keyed by the identifier the chat platform gives them.
type User struct {
	ID         int64
	ExternalID string
	CreatedAt  time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetOrCreate returns the user with the given external id, inserting it
	// first if it does not exist yet. A concurrent insert of the same id
	// resolves to the row that won.
	GetOrCreate(ctx context.Context, externalID string) (*User, error)
}
