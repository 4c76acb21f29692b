package app

import (
	"context"
	"time"

	"lesson-quiz-service/internal/domain"
)

// QuestionBank loads quiz content (from cache/backing store).
type QuestionBank interface {
	LoadQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
}

// AttemptStore persists ranking entries and enforces the one-attempt rule.
// RecordAttempt must be insert-if-absent: a duplicate (user, quiz) pair gets
// domain.ErrAlreadyAttempted and the stored entry stays authoritative.
type AttemptStore interface {
	HasAttempted(ctx context.Context, userID, quizID string) (bool, error)
	RecordAttempt(ctx context.Context, entry domain.RankingEntry) error
	TopRanking(ctx context.Context, quizID string, limit int) ([]domain.RankingEntry, error)
	UserPlacement(ctx context.Context, userID, quizID string) (int, error)
}

// QuizService contains the quiz core use cases: gated session start, result
// submission, and ranking queries.
type QuizService struct {
	bank     QuestionBank
	attempts AttemptStore
	now      func() time.Time

	feeds *rankingFeeds
}

func NewQuizService(bank QuestionBank, attempts AttemptStore) *QuizService {
	return &QuizService{
		bank:     bank,
		attempts: attempts,
		now:      time.Now,
		feeds:    newRankingFeeds(),
	}
}

// NewQuizServiceWithClock is test-only for deterministic submission times.
func NewQuizServiceWithClock(bank QuestionBank, attempts AttemptStore, now func() time.Time) *QuizService {
	s := NewQuizService(bank, attempts)
	s.now = now
	return s
}

// StartSession gates entry through the attempt guard and loads the question
// bank. A prior attempt returns ErrAlreadyAttempted so the caller can route
// straight to the ranking view instead of restarting the quiz.
func (s *QuizService) StartSession(ctx context.Context, userID, quizID string) (*Session, error) {
	attempted, err := s.attempts.HasAttempted(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if attempted {
		return nil, domain.ErrAlreadyAttempted
	}

	questions, err := s.bank.LoadQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	return newSessionWithClock(userID, quizID, questions, s.now)
}

// SubmitResult scores a completed session and appends exactly one ranking
// entry. The score is recomputed here from the session's finalized records;
// callers never pass a score value in. Returns the stored entry and the
// user's 1-based placement.
func (s *QuizService) SubmitResult(ctx context.Context, session *Session, displayName string) (domain.RankingEntry, int, error) {
	score, err := ComputeScore(session)
	if err != nil {
		return domain.RankingEntry{}, 0, err
	}

	duration := session.Duration()
	entry := domain.RankingEntry{
		UserID:          session.UserID(),
		DisplayName:     displayName,
		QuizID:          session.QuizID(),
		ScorePercentage: score.Percentage,
		CorrectCount:    score.CorrectCount,
		TotalQuestions:  score.TotalQuestions,
		DurationSeconds: &duration,
		SubmittedAt:     s.now(),
	}

	if err := s.attempts.RecordAttempt(ctx, entry); err != nil {
		return domain.RankingEntry{}, 0, err
	}

	placement, err := s.attempts.UserPlacement(ctx, entry.UserID, entry.QuizID)
	if err != nil {
		return domain.RankingEntry{}, 0, err
	}

	s.broadcastRanking(ctx, entry.QuizID)
	return entry, placement, nil
}

// Ranking returns the top entries for a quiz, fully ordered before truncation.
func (s *QuizService) Ranking(ctx context.Context, quizID string, limit int) (domain.Ranking, error) {
	entries, err := s.attempts.TopRanking(ctx, quizID, limit)
	if err != nil {
		return domain.Ranking{}, err
	}
	return domain.Ranking{QuizID: quizID, Entries: entries, UpdatedAt: s.now()}, nil
}

// Placement returns the user's 1-based rank within the full ranking, under
// the same ordering Ranking uses. ErrNotRanked if the user has no entry.
func (s *QuizService) Placement(ctx context.Context, userID, quizID string) (int, error) {
	return s.attempts.UserPlacement(ctx, userID, quizID)
}

// Subscribe returns a channel receiving the refreshed ranking after each
// accepted submission for the quiz. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *QuizService) Subscribe(quizID string) (<-chan domain.Ranking, func()) {
	return s.feeds.subscribe(quizID)
}

func (s *QuizService) broadcastRanking(ctx context.Context, quizID string) {
	if !s.feeds.hasSubscribers(quizID) {
		return
	}
	ranking, err := s.Ranking(ctx, quizID, 0)
	if err != nil {
		return
	}
	s.feeds.broadcast(quizID, ranking)
}
