package repository

import (
	"context"
	"time"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

// CardProgressRepository abstracts the user-card ledger: one row per
// (user, card) pair holding the confidence level and next eligible time.
type CardProgressRepository interface {
	// Assign creates a level-0 row eligible at now, only if no row exists
	// for the pair. A conflicting row is left untouched, not an error.
	Assign(ctx context.Context, userID, cardID int64, now time.Time) error
	// Get returns entity.ErrProgressNotFound when the pair has no row.
	Get(ctx context.Context, userID, cardID int64) (*entity.CardProgress, error)
	// Update persists level and next_review_at atomically as one statement.
	Update(ctx context.Context, progress *entity.CardProgress) error
	// DueForUser lists cards whose next_review_at is at or before now, in
	// catalog insertion order.
	DueForUser(ctx context.Context, userID int64, now time.Time) ([]entity.Card, error)
	CountsByLevel(ctx context.Context, userID int64) (map[int]int64, error)
	TotalAssigned(ctx context.Context, userID int64) (int64, error)
}
