package usecase

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/GrandZah/Learning-Matan/internal/entity"
	"github.com/GrandZah/Learning-Matan/internal/repository"
)

// SchedulerUsecase encapsulates the user-card ledger operations: idempotent
// assignment, confidence grading, and the two selection queries the session
// machine consumes. "Due" is computed lazily from wall-clock time at query
// time; there is no background scheduling loop.
type SchedulerUsecase interface {
	Assign(ctx context.Context, userID, cardID int64) error
	// Grade moves the pair's confidence one step and returns the new level.
	// It returns entity.ErrProgressNotFound when no ledger row exists.
	Grade(ctx context.Context, userID, cardID int64, success bool) (int, error)
	Due(ctx context.Context, userID int64) ([]entity.Card, error)
	Unseen(ctx context.Context, userID int64) ([]entity.Card, error)
	Stats(ctx context.Context, userID int64) (*entity.UserStats, error)
}

// NewSchedulerUsecase wires the ledger repositories with the confidence ladder.
func NewSchedulerUsecase(
	progress repository.CardProgressRepository,
	cards repository.CardRepository,
	ladder entity.Ladder,
) SchedulerUsecase {
	return &schedulerUsecase{
		progress: progress,
		cards:    cards,
		ladder:   ladder,
		clock:    utcNow,
	}
}

// utcNow keeps ledger timestamps offset-free so backends that compare
// timestamps textually stay ordered.
func utcNow() time.Time {
	return time.Now().UTC()
}

type schedulerUsecase struct {
	progress repository.CardProgressRepository
	cards    repository.CardRepository
	ladder   entity.Ladder
	clock    func() time.Time
}

func (u *schedulerUsecase) Assign(ctx context.Context, userID, cardID int64) error {
	if userID <= 0 {
		return entity.ErrInvalidUserID
	}
	return u.progress.Assign(ctx, userID, cardID, u.clock())
}

func (u *schedulerUsecase) Grade(ctx context.Context, userID, cardID int64, success bool) (int, error) {
	prog, err := u.progress.Get(ctx, userID, cardID)
	if err != nil {
		return 0, err
	}

	prog.ApplyGrade(success, u.ladder, u.clock())
	if err := u.progress.Update(ctx, prog); err != nil {
		return 0, err
	}
	return prog.Level, nil
}

func (u *schedulerUsecase) Due(ctx context.Context, userID int64) ([]entity.Card, error) {
	return u.progress.DueForUser(ctx, userID, u.clock())
}

func (u *schedulerUsecase) Unseen(ctx context.Context, userID int64) ([]entity.Card, error) {
	return u.cards.UnseenForUser(ctx, userID)
}

func (u *schedulerUsecase) Stats(ctx context.Context, userID int64) (*entity.UserStats, error) {
	counts, err := u.progress.CountsByLevel(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := u.progress.TotalAssigned(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Zero-fill so every ladder level shows up in reports.
	filled := lo.Associate(lo.Range(u.ladder.Levels()), func(level int) (int, int64) {
		return level, counts[level]
	})

	return &entity.UserStats{
		UserID:        userID,
		CountsByLevel: filled,
		TotalAssigned: total,
	}, nil
}
