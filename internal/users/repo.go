package users

import "context"

// Repo defines persistence operations for users.
type Repo interface {
	// Create inserts a new user, failing with ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user User) error
	// Upsert inserts or refreshes a user keyed by ID.
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
