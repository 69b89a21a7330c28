package entity

import "time"

// Ladder is the ordered table of confidence levels. The offset at index l is
// how soon a card graded at level l may resurface. Levels are deliberately
// coarse so the policy stays deterministic and testable per level.
type Ladder []time.Duration

// DefaultLadder returns the standard five-level ladder. Level 0 resurfaces
// immediately, which makes a freshly failed card eligible for review in the
// same sitting.
func DefaultLadder() Ladder {
	return Ladder{
		0,
		24 * time.Hour,
		72 * time.Hour,
		168 * time.Hour,
		504 * time.Hour,
	}
}

// NewLadder builds a ladder from explicit offsets.
func NewLadder(offsets []time.Duration) (Ladder, error) {
	if len(offsets) == 0 {
		return nil, ErrInvalidLadder
	}
	for _, offset := range offsets {
		if offset < 0 {
			return nil, ErrInvalidLadder
		}
	}
	ladder := make(Ladder, len(offsets))
	copy(ladder, offsets)
	return ladder, nil
}

// Levels reports the number of confidence levels.
func (l Ladder) Levels() int { return len(l) }

// Clamp bounds a level to the ladder's valid range [0, Levels()-1].
func (l Ladder) Clamp(level int) int {
	if level < 0 {
		return 0
	}
	if level > len(l)-1 {
		return len(l) - 1
	}
	return level
}

// NextReviewAt returns the moment a card graded at the given level becomes
// eligible again. A level outside the valid range yields now: corrupted
// ledger data degrades to "immediately eligible" instead of failing.
func (l Ladder) NextReviewAt(level int, now time.Time) time.Time {
	if level < 0 || level >= len(l) {
		return now
	}
	return now.Add(l[level])
}
