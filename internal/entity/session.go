package entity

// SessionMode is the per-user session state.
type SessionMode int

const (
	ModeIdle SessionMode = iota
	ModeLearning
	ModeReviewing
)

// String returns the lowercase mode name used in logs and the users table.
func (m SessionMode) String() string {
	switch m {
	case ModeLearning:
		return "learning"
	case ModeReviewing:
		return "reviewing"
	default:
		return "idle"
	}
}

// ParseSessionMode maps a stored mode name back to a SessionMode. Unknown
// values degrade to Idle, matching the restart behaviour.
func ParseSessionMode(s string) SessionMode {
	switch s {
	case "learning":
		return ModeLearning
	case "reviewing":
		return ModeReviewing
	default:
		return ModeIdle
	}
}

// Session is the transient per-user state owned by the scheduling engine:
// the current mode and the single card awaiting a grade, if any. Sessions are
// not persisted; on restart every user starts over in Idle with no pending
// card, while the graded history survives in the ledger.
type Session struct {
	UserID  int64
	Mode    SessionMode
	pending *Card
}

// Present records the card now in flight for this user.
func (s *Session) Present(card *Card) {
	s.pending = card
}

// Pending returns the card awaiting a grade, or nil.
func (s *Session) Pending() *Card {
	return s.pending
}

// ClearPending removes the in-flight marker. Grading clears the marker before
// selecting the next card so a duplicate grade cannot be double-applied.
func (s *Session) ClearPending() {
	s.pending = nil
}

// Reset returns the session to Idle with no pending card.
func (s *Session) Reset() {
	s.Mode = ModeIdle
	s.pending = nil
}
