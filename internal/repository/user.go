package repository

import (
	"context"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

// UserRepository abstracts persistence for learners. Users are created on
// first contact and never deleted.
type UserRepository interface {
	// Ensure creates the user if missing and refreshes the username when it
	// changed; it is safe to call on every inbound event.
	Ensure(ctx context.Context, id int64, username string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	// UpdateMode mirrors the in-process session mode into the users table.
	UpdateMode(ctx context.Context, id int64, mode entity.SessionMode) error
}
