package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"lesson-quiz-service/internal/domain"
)

func entry(userID, quizID string, score int, submitted time.Time) domain.RankingEntry {
	return domain.RankingEntry{
		UserID:          userID,
		DisplayName:     userID,
		QuizID:          quizID,
		ScorePercentage: score,
		CorrectCount:    score * 6 / 100,
		TotalQuestions:  6,
		SubmittedAt:     submitted,
	}
}

func TestRecordAttemptRejectsDuplicate(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()
	now := time.Now()

	if err := store.RecordAttempt(ctx, entry("u1", "week-01", 80, now)); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := store.RecordAttempt(ctx, entry("u1", "week-01", 90, now.Add(time.Second))); err != domain.ErrAlreadyAttempted {
		t.Fatalf("expected already attempted, got %v", err)
	}

	entries, err := store.TopRanking(ctx, "week-01", 0)
	if err != nil {
		t.Fatalf("top ranking: %v", err)
	}
	if len(entries) != 1 || entries[0].ScorePercentage != 80 {
		t.Fatalf("expected only the first entry to persist, got %+v", entries)
	}

	attempted, err := store.HasAttempted(ctx, "u1", "week-01")
	if err != nil || !attempted {
		t.Fatalf("expected attempt recorded, got %v %v", attempted, err)
	}
}

func TestRecordAttemptConcurrentDuplicates(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()
	now := time.Now()

	const submitters = 32
	var wg sync.WaitGroup
	errs := make(chan error, submitters)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.RecordAttempt(ctx, entry("u1", "week-01", 75, now))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if err != domain.ErrAlreadyAttempted {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one insert to win, got %d", succeeded)
	}

	entries, _ := store.TopRanking(ctx, "week-01", 0)
	if len(entries) != 1 {
		t.Fatalf("expected one entry after duplicate storm, got %d", len(entries))
	}
}

func TestTopRankingOrderAndTruncation(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()
	base := time.Now()

	_ = store.RecordAttempt(ctx, entry("u1", "week-01", 67, base))
	_ = store.RecordAttempt(ctx, entry("u2", "week-01", 90, base.Add(2*time.Minute)))
	_ = store.RecordAttempt(ctx, entry("u3", "week-01", 90, base.Add(time.Minute)))
	_ = store.RecordAttempt(ctx, entry("u4", "week-01", 100, base.Add(3*time.Minute)))
	_ = store.RecordAttempt(ctx, entry("u5", "week-02", 100, base))

	entries, err := store.TopRanking(ctx, "week-01", 0)
	if err != nil {
		t.Fatalf("top ranking: %v", err)
	}
	wantOrder := []string{"u4", "u3", "u2", "u1"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(entries))
	}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Fatalf("position %d: want %s, got %s", i+1, want, entries[i].UserID)
		}
	}

	// The limit truncates the same ordering; it never re-sorts.
	top2, _ := store.TopRanking(ctx, "week-01", 2)
	if len(top2) != 2 || top2[0].UserID != "u4" || top2[1].UserID != "u3" {
		t.Fatalf("expected truncated prefix [u4 u3], got %+v", top2)
	}
}

func TestUserPlacement(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()
	base := time.Now()

	_ = store.RecordAttempt(ctx, entry("u1", "week-01", 90, base))
	_ = store.RecordAttempt(ctx, entry("u2", "week-01", 90, base.Add(time.Minute)))

	p1, err := store.UserPlacement(ctx, "u1", "week-01")
	if err != nil || p1 != 1 {
		t.Fatalf("expected u1 first, got %d %v", p1, err)
	}
	p2, err := store.UserPlacement(ctx, "u2", "week-01")
	if err != nil || p2 != 2 {
		t.Fatalf("expected u2 second on the tie, got %d %v", p2, err)
	}

	if _, err := store.UserPlacement(ctx, "u3", "week-01"); err != domain.ErrNotRanked {
		t.Fatalf("expected not ranked, got %v", err)
	}
}
