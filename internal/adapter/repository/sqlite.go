package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

type sqliteCardRepository struct {
	db *sql.DB
}

func (r *sqliteCardRepository) Ensure(ctx context.Context, imageRef string) (*entity.Card, bool, error) {
	card := &entity.Card{ImageRef: imageRef}
	if err := card.Validate(); err != nil {
		return nil, false, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cards (image_ref) VALUES (?)`,
		imageRef,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert card: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert card: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, image_ref, created_at FROM cards WHERE image_ref = ?`,
		imageRef,
	)
	if err := row.Scan(&card.ID, &card.ImageRef, &card.CreatedAt); err != nil {
		return nil, false, fmt.Errorf("fetch card: %w", err)
	}
	return card, inserted > 0, nil
}

func (r *sqliteCardRepository) GetByID(ctx context.Context, id int64) (*entity.Card, error) {
	card := &entity.Card{}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, image_ref, created_at FROM cards WHERE id = ?`,
		id,
	)
	if err := row.Scan(&card.ID, &card.ImageRef, &card.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

func (r *sqliteCardRepository) UnseenForUser(ctx context.Context, userID int64) ([]entity.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.image_ref, c.created_at
		FROM cards c
		LEFT JOIN card_progress p ON p.card_id = c.id AND p.user_id = ?
		WHERE p.card_id IS NULL
		ORDER BY c.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query unseen cards: %w", err)
	}
	defer rows.Close()
	return scanSQLCards(rows)
}

func (r *sqliteCardRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return count, nil
}

type sqliteUserRepository struct {
	db *sql.DB
}

func (r *sqliteUserRepository) Ensure(ctx context.Context, id int64, username string) (*entity.User, error) {
	user := &entity.User{ID: id}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username)
		VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = CASE WHEN excluded.username <> '' THEN excluded.username ELSE users.username END,
			updated_at = CURRENT_TIMESTAMP`,
		id, username,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	user := &entity.User{}
	var mode string
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, mode, created_at, updated_at FROM users WHERE id = ?`,
		id,
	)
	if err := row.Scan(&user.ID, &user.Username, &mode, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Mode = entity.ParseSessionMode(mode)
	return user, nil
}

func (r *sqliteUserRepository) UpdateMode(ctx context.Context, id int64, mode entity.SessionMode) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET mode = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		mode.String(), id,
	)
	if err != nil {
		return fmt.Errorf("update user mode: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user mode: %w", err)
	}
	if affected == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

// sqliteProgressRepository stores all timestamps in UTC. The driver binds
// time.Time as text including its offset, and the next_review_at comparison
// is lexical, so every bound value must carry the same offset.
type sqliteProgressRepository struct {
	db *sql.DB
}

func (r *sqliteProgressRepository) Assign(ctx context.Context, userID, cardID int64, now time.Time) error {
	now = now.UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO card_progress (user_id, card_id, level, next_review_at, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?, ?)`,
		userID, cardID, now, now, now,
	)
	if err != nil {
		return fmt.Errorf("assign card: %w", err)
	}
	return nil
}

func (r *sqliteProgressRepository) Get(ctx context.Context, userID, cardID int64) (*entity.CardProgress, error) {
	progress := &entity.CardProgress{}
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, card_id, level, next_review_at, created_at, updated_at
		FROM card_progress
		WHERE user_id = ? AND card_id = ?`,
		userID, cardID,
	)
	err := row.Scan(&progress.UserID, &progress.CardID, &progress.Level,
		&progress.NextReviewAt, &progress.CreatedAt, &progress.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

func (r *sqliteProgressRepository) Update(ctx context.Context, progress *entity.CardProgress) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE card_progress
		SET level = ?, next_review_at = ?, updated_at = ?
		WHERE user_id = ? AND card_id = ?`,
		progress.Level, progress.NextReviewAt.UTC(), progress.UpdatedAt.UTC(), progress.UserID, progress.CardID,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if affected == 0 {
		return entity.ErrProgressNotFound
	}
	return nil
}

func (r *sqliteProgressRepository) DueForUser(ctx context.Context, userID int64, now time.Time) ([]entity.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.image_ref, c.created_at
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = ? AND p.next_review_at <= ?
		ORDER BY c.id`,
		userID, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query due cards: %w", err)
	}
	defer rows.Close()
	return scanSQLCards(rows)
}

func (r *sqliteProgressRepository) CountsByLevel(ctx context.Context, userID int64) (map[int]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT level, COUNT(*) FROM card_progress WHERE user_id = ? GROUP BY level`,
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

func (r *sqliteProgressRepository) TotalAssigned(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM card_progress WHERE user_id = ?`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assigned cards: %w", err)
	}
	return count, nil
}

func scanSQLCards(rows *sql.Rows) ([]entity.Card, error) {
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
