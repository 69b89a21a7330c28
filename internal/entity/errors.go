package entity

import "errors"

// Domain errors for the scheduling engine and related aggregates.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidUserID    = errors.New("invalid user ID")
	ErrCardNotFound     = errors.New("card not found")
	ErrInvalidImageRef  = errors.New("invalid card image reference")
	ErrDuplicateCard    = errors.New("card already exists")
	ErrProgressNotFound = errors.New("card progress not found")
	ErrSessionBusy      = errors.New("another card is already in flight")
	ErrNoPendingCard    = errors.New("no card is awaiting a grade")
	ErrUnknownEvent     = errors.New("unknown event kind")
	ErrInvalidLadder    = errors.New("invalid ladder offsets")
)
