package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

type pgCardRepository struct {
	pool *pgxpool.Pool
}

func (r *pgCardRepository) Ensure(ctx context.Context, imageRef string) (*entity.Card, bool, error) {
	card := &entity.Card{ImageRef: imageRef}
	if err := card.Validate(); err != nil {
		return nil, false, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO cards (image_ref)
		VALUES ($1)
		ON CONFLICT (image_ref) DO NOTHING
		RETURNING id, image_ref, created_at`,
		imageRef,
	)
	err := row.Scan(&card.ID, &card.ImageRef, &card.CreatedAt)
	if err == nil {
		return card, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert card: %w", translatePgError(err))
	}

	// Conflict: the card already exists, fetch it.
	row = r.pool.QueryRow(ctx,
		`SELECT id, image_ref, created_at FROM cards WHERE image_ref = $1`,
		imageRef,
	)
	if err := row.Scan(&card.ID, &card.ImageRef, &card.CreatedAt); err != nil {
		return nil, false, fmt.Errorf("fetch existing card: %w", err)
	}
	return card, false, nil
}

func (r *pgCardRepository) GetByID(ctx context.Context, id int64) (*entity.Card, error) {
	card := &entity.Card{}
	row := r.pool.QueryRow(ctx,
		`SELECT id, image_ref, created_at FROM cards WHERE id = $1`,
		id,
	)
	if err := row.Scan(&card.ID, &card.ImageRef, &card.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

func (r *pgCardRepository) UnseenForUser(ctx context.Context, userID int64) ([]entity.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.image_ref, c.created_at
		FROM cards c
		LEFT JOIN card_progress p ON p.card_id = c.id AND p.user_id = $1
		WHERE p.card_id IS NULL
		ORDER BY c.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query unseen cards: %w", err)
	}
	defer rows.Close()
	return scanPgCards(rows)
}

func (r *pgCardRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return count, nil
}

type pgUserRepository struct {
	pool *pgxpool.Pool
}

func (r *pgUserRepository) Ensure(ctx context.Context, id int64, username string) (*entity.User, error) {
	user := &entity.User{ID: id}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	var mode string
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE users.username END,
			updated_at = now()
		RETURNING id, username, mode, created_at, updated_at`,
		id, username,
	)
	if err := row.Scan(&user.ID, &user.Username, &mode, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("ensure user: %w", translatePgError(err))
	}
	user.Mode = entity.ParseSessionMode(mode)
	return user, nil
}

func (r *pgUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	user := &entity.User{}
	var mode string
	row := r.pool.QueryRow(ctx,
		`SELECT id, username, mode, created_at, updated_at FROM users WHERE id = $1`,
		id,
	)
	if err := row.Scan(&user.ID, &user.Username, &mode, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Mode = entity.ParseSessionMode(mode)
	return user, nil
}

func (r *pgUserRepository) UpdateMode(ctx context.Context, id int64, mode entity.SessionMode) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET mode = $2, updated_at = now() WHERE id = $1`,
		id, mode.String(),
	)
	if err != nil {
		return fmt.Errorf("update user mode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

type pgProgressRepository struct {
	pool *pgxpool.Pool
}

func (r *pgProgressRepository) Assign(ctx context.Context, userID, cardID int64, now time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO card_progress (user_id, card_id, level, next_review_at, created_at, updated_at)
		VALUES ($1, $2, 0, $3, $3, $3)
		ON CONFLICT (user_id, card_id) DO NOTHING`,
		userID, cardID, now,
	)
	if err != nil {
		return fmt.Errorf("assign card: %w", translatePgError(err))
	}
	return nil
}

func (r *pgProgressRepository) Get(ctx context.Context, userID, cardID int64) (*entity.CardProgress, error) {
	progress := &entity.CardProgress{}
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, card_id, level, next_review_at, created_at, updated_at
		FROM card_progress
		WHERE user_id = $1 AND card_id = $2`,
		userID, cardID,
	)
	err := row.Scan(&progress.UserID, &progress.CardID, &progress.Level,
		&progress.NextReviewAt, &progress.CreatedAt, &progress.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

func (r *pgProgressRepository) Update(ctx context.Context, progress *entity.CardProgress) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE card_progress
		SET level = $3, next_review_at = $4, updated_at = $5
		WHERE user_id = $1 AND card_id = $2`,
		progress.UserID, progress.CardID, progress.Level, progress.NextReviewAt, progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrProgressNotFound
	}
	return nil
}

func (r *pgProgressRepository) DueForUser(ctx context.Context, userID int64, now time.Time) ([]entity.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.image_ref, c.created_at
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = $1 AND p.next_review_at <= $2
		ORDER BY c.id`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("query due cards: %w", err)
	}
	defer rows.Close()
	return scanPgCards(rows)
}

func (r *pgProgressRepository) CountsByLevel(ctx context.Context, userID int64) (map[int]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT level, COUNT(*) FROM card_progress WHERE user_id = $1 GROUP BY level`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query level counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var level int
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan level count: %w", err)
		}
		counts[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate level counts: %w", err)
	}
	return counts, nil
}

func (r *pgProgressRepository) TotalAssigned(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM card_progress WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assigned cards: %w", err)
	}
	return count, nil
}

func scanPgCards(rows pgx.Rows) ([]entity.Card, error) {
	var cards []entity.Card
	for rows.Next() {
		var card entity.Card
		if err := rows.Scan(&card.ID, &card.ImageRef, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}
