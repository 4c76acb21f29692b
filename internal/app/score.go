package app

import "lesson-quiz-service/internal/domain"

// ComputeScore derives the final score of a completed session from its
// finalized answer records. Calling it on an incomplete session is a caller
// bug and returns ErrSessionIncomplete; partial scores are never computed.
func ComputeScore(s *Session) (domain.Score, error) {
	return s.score()
}

// percentage rounds 100*correct/total to the nearest integer, half up.
// Integer arithmetic keeps 5/6 -> 83 and 4/6 -> 67 exact.
func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
