package entity

import "time"

// Card is a single immutable study item backed by a rendered image.
// Cards are created once during catalog ingestion and never mutated;
// the image reference is unique across the catalog.
type Card struct {
	ID        int64
	ImageRef  string
	CreatedAt time.Time
}

// Validate checks invariants required before persistence.
func (c *Card) Validate() error {
	if c.ImageRef == "" {
		return ErrInvalidImageRef
	}
	return nil
}
