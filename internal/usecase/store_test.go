package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

// fakeStore backs all three repositories with one in-memory state so the
// unseen/due queries can join cards against progress the way SQL does.
type fakeStore struct {
	mu       sync.Mutex
	seq      int64
	cards    []entity.Card
	users    map[int64]*entity.User
	progress map[progressKey]*entity.CardProgress
}

type progressKey struct {
	userID int64
	cardID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*entity.User),
		progress: make(map[progressKey]*entity.CardProgress),
	}
}

func (f *fakeStore) addCard(imageRef string) entity.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	card := entity.Card{ID: f.seq, ImageRef: imageRef, CreatedAt: time.Now()}
	f.cards = append(f.cards, card)
	return card
}

// CardRepository

func (f *fakeStore) Ensure(ctx context.Context, imageRef string) (*entity.Card, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cards {
		if f.cards[i].ImageRef == imageRef {
			card := f.cards[i]
			return &card, false, nil
		}
	}
	f.seq++
	card := entity.Card{ID: f.seq, ImageRef: imageRef, CreatedAt: time.Now()}
	f.cards = append(f.cards, card)
	return &card, true, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cards {
		if f.cards[i].ID == id {
			card := f.cards[i]
			return &card, nil
		}
	}
	return nil, entity.ErrCardNotFound
}

func (f *fakeStore) UnseenForUser(ctx context.Context, userID int64) ([]entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var unseen []entity.Card
	for _, card := range f.cards {
		if _, ok := f.progress[progressKey{userID, card.ID}]; !ok {
			unseen = append(unseen, card)
		}
	}
	return unseen, nil
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.cards)), nil
}

// UserRepository

func (f *fakeStore) EnsureUser(ctx context.Context, id int64, username string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		user = &entity.User{ID: id, Username: username, Mode: entity.ModeIdle, CreatedAt: time.Now()}
		f.users[id] = user
	} else if username != "" {
		user.Username = username
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) UpdateMode(ctx context.Context, id int64, mode entity.SessionMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}
	user.Mode = mode
	return nil
}

// CardProgressRepository

func (f *fakeStore) Assign(ctx context.Context, userID, cardID int64, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{userID, cardID}
	if _, ok := f.progress[key]; ok {
		return nil
	}
	f.progress[key] = &entity.CardProgress{
		UserID:       userID,
		CardID:       cardID,
		Level:        0,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, userID, cardID int64) (*entity.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prog, ok := f.progress[progressKey{userID, cardID}]
	if !ok {
		return nil, entity.ErrProgressNotFound
	}
	clone := *prog
	return &clone, nil
}

func (f *fakeStore) Update(ctx context.Context, progress *entity.CardProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{progress.UserID, progress.CardID}
	if _, ok := f.progress[key]; !ok {
		return entity.ErrProgressNotFound
	}
	clone := *progress
	f.progress[key] = &clone
	return nil
}

func (f *fakeStore) DueForUser(ctx context.Context, userID int64, now time.Time) ([]entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []entity.Card
	for _, card := range f.cards {
		prog, ok := f.progress[progressKey{userID, card.ID}]
		if ok && !prog.NextReviewAt.After(now) {
			due = append(due, card)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (f *fakeStore) CountsByLevel(ctx context.Context, userID int64) (map[int]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[int]int64)
	for key, prog := range f.progress {
		if key.userID == userID {
			counts[prog.Level]++
		}
	}
	return counts, nil
}

func (f *fakeStore) TotalAssigned(ctx context.Context, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for key := range f.progress {
		if key.userID == userID {
			total++
		}
	}
	return total, nil
}

// userRepoAdapter exposes the fake store under the UserRepository method set.
type userRepoAdapter struct{ store *fakeStore }

func (a userRepoAdapter) Ensure(ctx context.Context, id int64, username string) (*entity.User, error) {
	return a.store.EnsureUser(ctx, id, username)
}

func (a userRepoAdapter) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return a.store.GetUserByID(ctx, id)
}

func (a userRepoAdapter) UpdateMode(ctx context.Context, id int64, mode entity.SessionMode) error {
	return a.store.UpdateMode(ctx, id, mode)
}
