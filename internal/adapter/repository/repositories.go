package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/GrandZah/Learning-Matan/internal/entity"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/database"
	"github.com/GrandZah/Learning-Matan/internal/repository"
)

// Constructors pick the backend off the connection handle so usecases and
// wiring stay storage agnostic.

// NewCardRepository returns the card catalog repository for the connection.
func NewCardRepository(conn *database.Conn) repository.CardRepository {
	if conn.Pool != nil {
		return &pgCardRepository{pool: conn.Pool}
	}
	return &sqliteCardRepository{db: conn.DB}
}

// NewUserRepository returns the user repository for the connection.
func NewUserRepository(conn *database.Conn) repository.UserRepository {
	if conn.Pool != nil {
		return &pgUserRepository{pool: conn.Pool}
	}
	return &sqliteUserRepository{db: conn.DB}
}

// NewCardProgressRepository returns the ledger repository for the connection.
func NewCardProgressRepository(conn *database.Conn) repository.CardProgressRepository {
	if conn.Pool != nil {
		return &pgProgressRepository{pool: conn.Pool}
	}
	return &sqliteProgressRepository{db: conn.DB}
}

const pgUniqueViolation = "23505"

// translatePgError maps driver-level failures onto domain errors.
func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return entity.ErrDuplicateCard
	}
	return err
}
