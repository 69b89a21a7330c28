package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/GrandZah/Learning-Matan/internal/entity"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/config"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/database"
)

func requireSQLite(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
		return
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
}

func newSQLiteTestConn(t *testing.T) *database.Conn {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite3"
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")

	conn, cleanup, err := database.NewConn(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(cleanup)
	return conn
}

func seedUserAndCard(t *testing.T, ctx context.Context, conn *database.Conn) *entity.Card {
	t.Helper()
	if _, err := NewUserRepository(conn).Ensure(ctx, 1, "ada"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	card, _, err := NewCardRepository(conn).Ensure(ctx, "limits/001.png")
	if err != nil {
		t.Fatalf("ensure card: %v", err)
	}
	return card
}

// The driver compares next_review_at textually, so a row written with one UTC
// offset must still order correctly against a query clock carrying another,
// as happens across a DST transition or a backup moved between hosts.
func TestSQLiteDueForUserAcrossUTCOffsets(t *testing.T) {
	requireSQLite(t)

	ctx := context.Background()
	conn := newSQLiteTestConn(t)
	card := seedUserAndCard(t, ctx, conn)
	progress := NewCardProgressRepository(conn)

	cest := time.FixedZone("CEST", 2*3600)
	cet := time.FixedZone("CET", 3600)

	// 2026-10-25 02:30 +02:00 is 00:30 UTC.
	assignedAt := time.Date(2026, 10, 25, 2, 30, 0, 0, cest)
	if err := progress.Assign(ctx, 1, card.ID, assignedAt); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// 00:15 UTC, before the stored instant: nothing is due yet.
	early := time.Date(2026, 10, 25, 1, 15, 0, 0, cet)
	due, err := progress.DueForUser(ctx, 1, early)
	if err != nil {
		t.Fatalf("due before eligibility: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("card returned %v before its review time", due)
	}

	// 01:00 UTC, after the stored instant but with a smaller offset; the
	// local clock reads earlier than the stored local time.
	now := time.Date(2026, 10, 25, 2, 0, 0, 0, cet)
	due, err = progress.DueForUser(ctx, 1, now)
	if err != nil {
		t.Fatalf("due after eligibility: %v", err)
	}
	if len(due) != 1 || due[0].ID != card.ID {
		t.Errorf("due = %v, want card %d", due, card.ID)
	}

	prog, err := progress.Get(ctx, 1, card.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if !prog.NextReviewAt.Equal(assignedAt) {
		t.Errorf("next_review_at = %v, want instant %v", prog.NextReviewAt, assignedAt)
	}
}

func TestSQLiteUpdateKeepsDueOrdering(t *testing.T) {
	requireSQLite(t)

	ctx := context.Background()
	conn := newSQLiteTestConn(t)
	card := seedUserAndCard(t, ctx, conn)
	progress := NewCardProgressRepository(conn)

	assignedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := progress.Assign(ctx, 1, card.ID, assignedAt); err != nil {
		t.Fatalf("assign: %v", err)
	}

	prog, err := progress.Get(ctx, 1, card.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	kyiv := time.FixedZone("EET", 2*3600)
	prog.Level = 1
	prog.NextReviewAt = time.Date(2026, 3, 2, 14, 0, 0, 0, kyiv) // 12:00 UTC next day
	prog.UpdatedAt = prog.NextReviewAt
	if err := progress.Update(ctx, prog); err != nil {
		t.Fatalf("update: %v", err)
	}

	due, err := progress.DueForUser(ctx, 1, time.Date(2026, 3, 2, 11, 59, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("due before eligibility: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("card returned %v before its rescheduled time", due)
	}

	due, err = progress.DueForUser(ctx, 1, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("due at eligibility: %v", err)
	}
	if len(due) != 1 || due[0].ID != card.ID {
		t.Errorf("due = %v, want card %d", due, card.ID)
	}
}
