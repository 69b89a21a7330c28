package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/GrandZah/Learning-Matan/internal/entity"
	"github.com/GrandZah/Learning-Matan/internal/repository"
)

// SessionUsecase is the per-user session state machine. It guarantees exactly
// one card is in flight per user, serializes all events for the same user,
// and drives auto-continuation after every grade.
type SessionUsecase interface {
	Handle(ctx context.Context, event entity.Event) (*entity.Reply, error)
}

// NewSessionUsecase wires the scheduler and user store into the state machine.
func NewSessionUsecase(
	scheduler SchedulerUsecase,
	users repository.UserRepository,
	logger *logrus.Logger,
) SessionUsecase {
	return &sessionUsecase{
		scheduler: scheduler,
		users:     users,
		logger:    logger,
		sessions:  make(map[int64]*userSession),
	}
}

type sessionUsecase struct {
	scheduler SchedulerUsecase
	users     repository.UserRepository
	logger    *logrus.Logger

	mu       sync.Mutex
	sessions map[int64]*userSession
}

// userSession serializes all handling for one learner. The lock is held for
// the whole event so the pending-card guard and the ladder update cannot
// interleave; the only work inside is repository calls.
type userSession struct {
	mu sync.Mutex
	entity.Session
}

var cardActions = []string{"know", "dont_know", "view"}

func prompt(card *entity.Card) *entity.CardPrompt {
	return &entity.CardPrompt{
		CardID:   card.ID,
		ImageRef: card.ImageRef,
		Actions:  append([]string(nil), cardActions...),
	}
}

func (u *sessionUsecase) session(userID int64) *userSession {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sessions[userID]
	if !ok {
		s = &userSession{Session: entity.Session{UserID: userID, Mode: entity.ModeIdle}}
		u.sessions[userID] = s
	}
	return s
}

func (u *sessionUsecase) Handle(ctx context.Context, event entity.Event) (*entity.Reply, error) {
	if event.UserID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if !event.Kind.Valid() {
		return nil, entity.ErrUnknownEvent
	}
	if _, err := u.users.Ensure(ctx, event.UserID, event.Username); err != nil {
		return nil, err
	}

	s := u.session(event.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Kind {
	case entity.EventStart:
		return u.handleStart(ctx, s)
	case entity.EventLearn:
		return u.handleLearn(ctx, s)
	case entity.EventReview:
		return u.handleReview(ctx, s)
	case entity.EventGrade:
		return u.handleGrade(ctx, s, event.Success)
	default:
		return u.handleView(s), nil
	}
}

// handleStart is the only transition accepted in every mode. It drops the
// pending card without grading it.
func (u *sessionUsecase) handleStart(ctx context.Context, s *userSession) (*entity.Reply, error) {
	s.Reset()
	u.persistMode(ctx, s)
	return &entity.Reply{
		Kind: entity.ReplyGreeting,
		Text: "Hi! I will help you study your cards. Send learn to see new material or review to repeat what is due.",
	}, nil
}

func (u *sessionUsecase) handleLearn(ctx context.Context, s *userSession) (*entity.Reply, error) {
	if s.Mode != entity.ModeIdle {
		return busyReply(), nil
	}

	unseen, err := u.scheduler.Unseen(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if len(unseen) == 0 {
		return &entity.Reply{
			Kind: entity.ReplyNothingNew,
			Text: "You have seen every card already. Try review to repeat them.",
		}, nil
	}

	card := unseen[0]
	if err := u.present(ctx, s, &card, entity.ModeLearning); err != nil {
		return nil, err
	}
	return &entity.Reply{Kind: entity.ReplyCard, Card: prompt(&card), Text: "What is shown on this card?"}, nil
}

func (u *sessionUsecase) handleReview(ctx context.Context, s *userSession) (*entity.Reply, error) {
	if s.Mode != entity.ModeIdle {
		return busyReply(), nil
	}

	due, err := u.scheduler.Due(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return &entity.Reply{
			Kind: entity.ReplyNothingDue,
			Text: "Nothing is due for review right now. Come back later!",
		}, nil
	}

	card := due[0]
	if err := u.present(ctx, s, &card, entity.ModeReviewing); err != nil {
		return nil, err
	}
	return &entity.Reply{Kind: entity.ReplyCard, Card: prompt(&card), Text: "What is shown on this card?"}, nil
}

func (u *sessionUsecase) handleGrade(ctx context.Context, s *userSession, success bool) (*entity.Reply, error) {
	pending := s.Pending()
	if pending == nil {
		return &entity.Reply{
			Kind: entity.ReplyNoPendingCard,
			Text: "There is no card waiting for an answer. Send learn or review first.",
		}, nil
	}

	level, err := u.scheduler.Grade(ctx, s.UserID, pending.ID, success)
	switch {
	case errors.Is(err, entity.ErrProgressNotFound):
		// The ledger and the session disagree; drop the grade instead of
		// failing the session.
		u.logger.WithFields(logrus.Fields{
			"user_id": s.UserID,
			"card_id": pending.ID,
		}).Warn("grade for card without ledger entry, ignoring")
	case err != nil:
		return nil, err
	default:
		u.logger.WithFields(logrus.Fields{
			"user_id": s.UserID,
			"card_id": pending.ID,
			"success": success,
			"level":   level,
		}).Info("grade applied")
	}

	// Clear before selecting the next card: a duplicate grade must be
	// rejected, never double-applied.
	s.ClearPending()

	next, nextMode, err := u.continueAfterGrade(ctx, s)
	if err != nil {
		return nil, err
	}
	if next == nil {
		s.Reset()
		u.persistMode(ctx, s)
		return &entity.Reply{
			Kind:    entity.ReplyAllDone,
			Success: success,
			Text:    "All caught up: nothing new and nothing due. Well done!",
		}, nil
	}

	if err := u.present(ctx, s, next, nextMode); err != nil {
		return nil, err
	}
	text := "Marked as known. Next card:"
	if !success {
		text = "No worries, it will come back sooner. Next card:"
	}
	return &entity.Reply{
		Kind:    entity.ReplyGradeAccepted,
		Card:    prompt(next),
		Success: success,
		Text:    text,
	}, nil
}

// continueAfterGrade picks the next card. The pool matching the current mode
// is tried first, then the other one, so a learner is never told there is
// nothing to do while either pool is non-empty.
func (u *sessionUsecase) continueAfterGrade(ctx context.Context, s *userSession) (*entity.Card, entity.SessionMode, error) {
	first, second := u.scheduler.Unseen, u.scheduler.Due
	firstMode, secondMode := entity.ModeLearning, entity.ModeReviewing
	if s.Mode == entity.ModeReviewing {
		first, second = second, first
		firstMode, secondMode = secondMode, firstMode
	}

	cards, err := first(ctx, s.UserID)
	if err != nil {
		return nil, entity.ModeIdle, err
	}
	if len(cards) > 0 {
		return &cards[0], firstMode, nil
	}

	cards, err = second(ctx, s.UserID)
	if err != nil {
		return nil, entity.ModeIdle, err
	}
	if len(cards) > 0 {
		return &cards[0], secondMode, nil
	}
	return nil, entity.ModeIdle, nil
}

func (u *sessionUsecase) handleView(s *userSession) *entity.Reply {
	pending := s.Pending()
	if pending == nil {
		return &entity.Reply{
			Kind: entity.ReplyNoPendingCard,
			Text: "There is no card waiting for an answer. Send learn or review first.",
		}
	}
	return &entity.Reply{Kind: entity.ReplyCard, Card: prompt(pending), Text: "What is shown on this card?"}
}

// present makes the card the user's single in-flight card. Unseen cards get a
// ledger row here, so assignment always precedes grading.
func (u *sessionUsecase) present(ctx context.Context, s *userSession, card *entity.Card, mode entity.SessionMode) error {
	if mode == entity.ModeLearning {
		if err := u.scheduler.Assign(ctx, s.UserID, card.ID); err != nil {
			return err
		}
	}
	s.Mode = mode
	s.Present(card)
	u.persistMode(ctx, s)
	u.logger.WithFields(logrus.Fields{
		"user_id":   s.UserID,
		"card_id":   card.ID,
		"image_ref": card.ImageRef,
		"mode":      mode.String(),
	}).Info("card presented")
	return nil
}

// persistMode mirrors the session mode into the users table. The in-process
// session stays authoritative, so a failed mirror is only logged.
func (u *sessionUsecase) persistMode(ctx context.Context, s *userSession) {
	if err := u.users.UpdateMode(ctx, s.UserID, s.Mode); err != nil {
		u.logger.WithFields(logrus.Fields{
			"user_id": s.UserID,
			"mode":    s.Mode.String(),
		}).Warnf("persist session mode: %v", err)
	}
}

func busyReply() *entity.Reply {
	return &entity.Reply{
		Kind: entity.ReplyBusy,
		Text: "Finish the current card or send start to reset before requesting another one.",
	}
}
