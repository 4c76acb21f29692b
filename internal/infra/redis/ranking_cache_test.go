package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"lesson-quiz-service/internal/domain"
	"lesson-quiz-service/internal/infra/memory"
)

func rankingEntry(userID string, score int, submitted time.Time) domain.RankingEntry {
	return domain.RankingEntry{
		UserID:          userID,
		DisplayName:     userID,
		QuizID:          "week-01",
		ScorePercentage: score,
		CorrectCount:    score * 6 / 100,
		TotalQuestions:  6,
		SubmittedAt:     submitted,
	}
}

func TestRankingCacheSnapshotsAndInvalidates(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewRankingCache(newClient(mr), memory.NewAttemptStore(), time.Minute)
	ctx := context.Background()
	base := time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC)

	if err := cache.RecordAttempt(ctx, rankingEntry("u1", 83, base)); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := cache.TopRanking(ctx, "week-01", 10)
	if err != nil {
		t.Fatalf("top ranking: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !mr.Exists("quiz:week-01:ranking") {
		t.Fatalf("expected snapshot cached after read")
	}

	// A new attempt drops the snapshot so the next read sees it.
	if err := cache.RecordAttempt(ctx, rankingEntry("u2", 100, base.Add(time.Minute))); err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if mr.Exists("quiz:week-01:ranking") {
		t.Fatalf("expected snapshot invalidated on write")
	}

	entries, err = cache.TopRanking(ctx, "week-01", 10)
	if err != nil {
		t.Fatalf("top ranking 2: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != "u2" {
		t.Fatalf("expected u2 leading, got %+v", entries)
	}
}

func TestRankingCachePlacementThroughSnapshot(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewRankingCache(newClient(mr), memory.NewAttemptStore(), time.Minute)
	ctx := context.Background()
	base := time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC)

	_ = cache.RecordAttempt(ctx, rankingEntry("u1", 90, base))
	_ = cache.RecordAttempt(ctx, rankingEntry("u2", 90, base.Add(time.Minute)))

	// Warm the snapshot, then resolve placements from it.
	if _, err := cache.TopRanking(ctx, "week-01", 0); err != nil {
		t.Fatalf("warm snapshot: %v", err)
	}

	p1, err := cache.UserPlacement(ctx, "u1", "week-01")
	if err != nil || p1 != 1 {
		t.Fatalf("expected u1 first, got %d %v", p1, err)
	}
	p2, err := cache.UserPlacement(ctx, "u2", "week-01")
	if err != nil || p2 != 2 {
		t.Fatalf("expected u2 second, got %d %v", p2, err)
	}
	if _, err := cache.UserPlacement(ctx, "u3", "week-01"); err != domain.ErrNotRanked {
		t.Fatalf("expected not ranked, got %v", err)
	}
}

func TestRankingCacheDuplicatePassesThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewRankingCache(newClient(mr), memory.NewAttemptStore(), time.Minute)
	ctx := context.Background()
	now := time.Now()

	if err := cache.RecordAttempt(ctx, rankingEntry("u1", 80, now)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := cache.RecordAttempt(ctx, rankingEntry("u1", 90, now)); err != domain.ErrAlreadyAttempted {
		t.Fatalf("expected already attempted, got %v", err)
	}
}
