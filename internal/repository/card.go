package repository

import (
	"context"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

// CardRepository abstracts persistence for the card catalog to keep usecases
// storage agnostic. The catalog is append-only; Ensure is the idempotent
// ingestion primitive keyed by image reference.
type CardRepository interface {
	// Ensure inserts a card for the image reference unless one already
	// exists. The second result reports whether a new card was created.
	Ensure(ctx context.Context, imageRef string) (*entity.Card, bool, error)
	GetByID(ctx context.Context, id int64) (*entity.Card, error)
	// UnseenForUser lists catalog cards the user has no progress for yet,
	// in catalog insertion order.
	UnseenForUser(ctx context.Context, userID int64) ([]entity.Card, error)
	Count(ctx context.Context) (int64, error)
}
