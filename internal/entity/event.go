package entity

// EventKind identifies a normalized inbound event. The transport adapter
// produces these; the engine never branches on transport-specific shapes.
type EventKind string

const (
	EventStart  EventKind = "start"
	EventLearn  EventKind = "learn"
	EventReview EventKind = "review"
	EventGrade  EventKind = "grade"
	EventView   EventKind = "view"
)

// Valid reports whether the kind is one the engine understands.
func (k EventKind) Valid() bool {
	switch k {
	case EventStart, EventLearn, EventReview, EventGrade, EventView:
		return true
	}
	return false
}

// Event is a single normalized inbound event from the chat transport.
// Success is only meaningful for EventGrade.
type Event struct {
	UserID   int64
	Username string
	Kind     EventKind
	Success  bool
}

// ReplyKind identifies the single outbound message produced by an event.
type ReplyKind string

const (
	ReplyGreeting      ReplyKind = "greeting"
	ReplyNothingNew    ReplyKind = "nothing_new"
	ReplyNothingDue    ReplyKind = "nothing_due"
	ReplyCard          ReplyKind = "card"
	ReplyGradeAccepted ReplyKind = "grade_accepted"
	ReplyAllDone       ReplyKind = "all_done"
	ReplyBusy          ReplyKind = "busy"
	ReplyNoPendingCard ReplyKind = "no_pending_card"
)

// CardPrompt carries the observable side effect of presenting a card.
type CardPrompt struct {
	CardID   int64
	ImageRef string
	Actions  []string
}

// Reply is the zero-or-one outbound message for an inbound event. Card is set
// whenever the transition ended with a card being presented; Success echoes
// the grade for grade_accepted replies.
type Reply struct {
	Kind    ReplyKind
	Card    *CardPrompt
	Success bool
	Text    string
}
