package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lesson-quiz-service/internal/domain"
)

// rankingOrder must match domain.Less; placement and top-N queries both use
// it so a reported position is consistent with the list.
const rankingOrder = `score_percentage DESC, submitted_at ASC, display_name ASC, user_id ASC`

const pgUniqueViolation = "23505"

// AttemptStore persists ranking entries in Postgres. The one-attempt rule is
// enforced by the UNIQUE (user_id, quiz_id) constraint, so concurrent
// duplicate submits race inside the database, not in application code.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) HasAttempted(ctx context.Context, userID, quizID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rankings WHERE user_id=$1 AND quiz_id=$2)`,
		userID, quizID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return exists, nil
}

func (s *AttemptStore) RecordAttempt(ctx context.Context, entry domain.RankingEntry) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO rankings (user_id, display_name, quiz_id, score_percentage, correct_count, total_questions, duration_seconds, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.UserID, entry.DisplayName, entry.QuizID,
		entry.ScorePercentage, entry.CorrectCount, entry.TotalQuestions,
		entry.DurationSeconds, entry.SubmittedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrAlreadyAttempted
	}
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) TopRanking(ctx context.Context, quizID string, limit int) ([]domain.RankingEntry, error) {
	query := `
SELECT user_id, display_name, quiz_id, score_percentage, correct_count, total_questions, duration_seconds, submitted_at
FROM rankings
WHERE quiz_id=$1
ORDER BY ` + rankingOrder

	args := []interface{}{quizID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top ranking: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var e domain.RankingEntry
		if err := rows.Scan(
			&e.UserID, &e.DisplayName, &e.QuizID,
			&e.ScorePercentage, &e.CorrectCount, &e.TotalQuestions,
			&e.DurationSeconds, &e.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top ranking rows: %w", err)
	}
	return entries, nil
}

func (s *AttemptStore) UserPlacement(ctx context.Context, userID, quizID string) (int, error) {
	var placement int
	err := s.pool.QueryRow(ctx, `
SELECT rn FROM (
	SELECT user_id, ROW_NUMBER() OVER (ORDER BY `+rankingOrder+`) AS rn
	FROM rankings
	WHERE quiz_id=$1
) ranked
WHERE user_id=$2`,
		quizID, userID,
	).Scan(&placement)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotRanked
	}
	if err != nil {
		return 0, fmt.Errorf("user placement: %w", err)
	}
	return placement, nil
}
