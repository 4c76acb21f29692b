package memory

import (
	"context"
	"sync"

	"lesson-quiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
// The check-then-insert in RecordAttempt runs under one lock, so a duplicate
// submit (double click, concurrent goroutines) can never produce two entries.
type AttemptStore struct {
	mu     sync.RWMutex
	byKey  map[attemptKey]domain.RankingEntry
	byQuiz map[string][]domain.RankingEntry
}

type attemptKey struct {
	userID string
	quizID string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		byKey:  make(map[attemptKey]domain.RankingEntry),
		byQuiz: make(map[string][]domain.RankingEntry),
	}
}

func (s *AttemptStore) HasAttempted(_ context.Context, userID, quizID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byKey[attemptKey{userID, quizID}]
	return ok, nil
}

func (s *AttemptStore) RecordAttempt(_ context.Context, entry domain.RankingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{entry.UserID, entry.QuizID}
	if _, ok := s.byKey[key]; ok {
		return domain.ErrAlreadyAttempted
	}

	s.byKey[key] = entry
	s.byQuiz[entry.QuizID] = append(s.byQuiz[entry.QuizID], entry)
	return nil
}

func (s *AttemptStore) TopRanking(_ context.Context, quizID string, limit int) ([]domain.RankingEntry, error) {
	s.mu.RLock()
	entries := make([]domain.RankingEntry, len(s.byQuiz[quizID]))
	copy(entries, s.byQuiz[quizID])
	s.mu.RUnlock()

	// Full sort before truncation, so the cut never reorders ranks.
	domain.SortRanking(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *AttemptStore) UserPlacement(_ context.Context, userID, quizID string) (int, error) {
	entries, err := s.TopRanking(context.Background(), quizID, 0)
	if err != nil {
		return 0, err
	}

	for i, entry := range entries {
		if entry.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, domain.ErrNotRanked
}
