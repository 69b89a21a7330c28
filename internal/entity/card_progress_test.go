package entity

import (
	"testing"
	"time"
)

func TestApplyGradeMovesOneStep(t *testing.T) {
	ladder := DefaultLadder()
	now := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	prog := CardProgress{UserID: 1, CardID: 1, Level: 2}

	prog.ApplyGrade(true, ladder, now)
	if prog.Level != 3 {
		t.Errorf("expected level 3 after success, got %d", prog.Level)
	}
	if want := now.Add(ladder[3]); !prog.NextReviewAt.Equal(want) {
		t.Errorf("expected next review %v, got %v", want, prog.NextReviewAt)
	}

	prog.ApplyGrade(false, ladder, now)
	if prog.Level != 2 {
		t.Errorf("expected level 2 after failure, got %d", prog.Level)
	}
}

func TestApplyGradeClampsAtBounds(t *testing.T) {
	ladder := DefaultLadder()
	now := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)

	bottom := CardProgress{Level: 0}
	bottom.ApplyGrade(false, ladder, now)
	if bottom.Level != 0 {
		t.Errorf("expected failure at level 0 to stay 0, got %d", bottom.Level)
	}
	if !bottom.NextReviewAt.Equal(now) {
		t.Errorf("expected level-0 card due immediately, got %v", bottom.NextReviewAt)
	}

	top := CardProgress{Level: ladder.Levels() - 1}
	top.ApplyGrade(true, ladder, now)
	if top.Level != ladder.Levels()-1 {
		t.Errorf("expected success at top level to stay %d, got %d", ladder.Levels()-1, top.Level)
	}
}

func TestApplyGradeRecoversCorruptedLevel(t *testing.T) {
	ladder := DefaultLadder()
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

	prog := CardProgress{Level: 99}
	prog.ApplyGrade(true, ladder, now)
	if prog.Level != ladder.Levels()-1 {
		t.Errorf("expected corrupted level to converge into range, got %d", prog.Level)
	}
}

func TestDue(t *testing.T) {
	now := time.Date(2024, 5, 7, 12, 0, 0, 0, time.UTC)
	prog := CardProgress{NextReviewAt: now}
	if !prog.Due(now) {
		t.Error("expected card with next_review_at == now to be due")
	}
	prog.NextReviewAt = now.Add(time.Minute)
	if prog.Due(now) {
		t.Error("expected card with future next_review_at to not be due")
	}
}
