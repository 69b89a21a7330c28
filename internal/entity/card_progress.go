package entity

import "time"

// CardProgress is the authoritative scheduling state for one (user, card)
// pair: the current confidence level and when the card becomes eligible for
// review again. Created at level 0 the first time a card is presented,
// mutated only by grading.
type CardProgress struct {
	UserID       int64
	CardID       int64
	Level        int
	NextReviewAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplyGrade moves the level one step up or down, clamped to the ladder's
// range, and recomputes the next review time. Both fields must be persisted
// together.
func (p *CardProgress) ApplyGrade(success bool, ladder Ladder, now time.Time) {
	next := p.Level
	if success {
		next++
	} else {
		next--
	}
	p.Level = ladder.Clamp(next)
	p.NextReviewAt = ladder.NextReviewAt(p.Level, now)
	p.UpdatedAt = now
}

// Due reports whether the card is eligible for review at the given moment.
func (p *CardProgress) Due(now time.Time) bool {
	return !p.NextReviewAt.After(now)
}
