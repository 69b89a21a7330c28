package entity

import "time"

// User represents a learner. Users are created on first contact and never
// deleted. Mode mirrors the in-process session mode for observability; the
// session object owned by the engine is authoritative.
type User struct {
	ID        int64
	Username  string
	Mode      SessionMode
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the user entity.
func (u *User) Validate() error {
	if u.ID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}
