package domain

import "errors"

var (
	// ErrQuizUnavailable is returned when a quiz has no questions or is
	// missing required day coverage; callers must not start a session on it.
	ErrQuizUnavailable = errors.New("quiz unavailable")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAlreadyAttempted is returned when a (user, quiz) pair already has a
	// ranking entry; the existing entry stays authoritative.
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrNoSelection is returned by CheckAnswer when no option is selected.
	// Recoverable: the session is left unchanged.
	ErrNoSelection = errors.New("no option selected")
	// ErrInvalidOption indicates an option index outside the question's range.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrAnswerFinalized is returned on attempts to change a checked answer.
	ErrAnswerFinalized = errors.New("answer already finalized")
	// ErrAnswerNotFinalized is returned by Advance while the current answer
	// has not been checked yet.
	ErrAnswerNotFinalized = errors.New("answer not finalized")
	// ErrSessionCompleted is returned on transitions against a completed session.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrSessionIncomplete is returned when a score is requested before the
	// last answer is finalized. Indicates a caller bug, not user input.
	ErrSessionIncomplete = errors.New("session not completed")
	// ErrNotRanked is returned when a user has no entry for a quiz.
	ErrNotRanked = errors.New("user not ranked")
)
