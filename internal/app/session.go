package app

import (
	"sync"
	"time"

	"lesson-quiz-service/internal/domain"
)

// State is the lifecycle phase of a quiz session.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "not_started"
	}
}

const noSelection = -1

// Session drives one user's pass through a fixed question sequence.
// Questions are presented strictly in bank order; the cursor only moves one
// step at a time via Advance and Retreat. Finalized answers never change.
type Session struct {
	userID string
	quizID string

	mu        sync.RWMutex
	now       func() time.Time
	startedAt time.Time
	questions []domain.Question
	answers   []domain.AnswerRecord
	current   int
	state     State
}

// Snapshot is an immutable view of the session for the presentation shell.
type Snapshot struct {
	UserID       string                `json:"userId"`
	QuizID       string                `json:"quizId"`
	State        string                `json:"state"`
	CurrentIndex int                   `json:"currentIndex"`
	Question     domain.Question       `json:"question"`
	Answers      []domain.AnswerRecord `json:"answers"`
}

// NewSession starts a session over the given questions.
// Returns ErrQuizUnavailable for an empty question set.
func NewSession(userID, quizID string, questions []domain.Question) (*Session, error) {
	return newSessionWithClock(userID, quizID, questions, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(userID, quizID string, questions []domain.Question, now func() time.Time) (*Session, error) {
	return newSessionWithClock(userID, quizID, questions, now)
}

func newSessionWithClock(userID, quizID string, questions []domain.Question, now func() time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrQuizUnavailable
	}

	answers := make([]domain.AnswerRecord, len(questions))
	for i, q := range questions {
		answers[i] = domain.AnswerRecord{QuestionID: q.ID, Selected: noSelection}
	}

	return &Session{
		userID:    userID,
		quizID:    quizID,
		now:       now,
		startedAt: now(),
		questions: questions,
		answers:   answers,
		current:   0,
		state:     StateInProgress,
	}, nil
}

// SelectOption records a pending selection for the current question.
// Re-selecting before the answer is checked overwrites the previous pick.
func (s *Session) SelectOption(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return domain.ErrSessionCompleted
	}
	if s.answers[s.current].Finalized {
		return domain.ErrAnswerFinalized
	}
	if option < 0 || option >= len(s.questions[s.current].Options) {
		return domain.ErrInvalidOption
	}

	s.answers[s.current].Selected = option
	return nil
}

// CheckAnswer finalizes the current answer against the question's correct
// option. Without a pending selection it returns ErrNoSelection and leaves
// the session untouched. Finalization is one-way.
func (s *Session) CheckAnswer() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return false, domain.ErrSessionCompleted
	}
	rec := &s.answers[s.current]
	if rec.Finalized {
		return false, domain.ErrAnswerFinalized
	}
	if rec.Selected == noSelection {
		return false, domain.ErrNoSelection
	}

	rec.Correct = rec.Selected == s.questions[s.current].CorrectOption
	rec.Finalized = true
	return rec.Correct, nil
}

// Advance moves to the next question once the current answer is finalized.
// Advancing past the last question completes the session.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return domain.ErrSessionCompleted
	}
	if !s.answers[s.current].Finalized {
		return domain.ErrAnswerNotFinalized
	}

	if s.current == len(s.questions)-1 {
		s.state = StateCompleted
		return nil
	}
	s.current++
	return nil
}

// Retreat steps back to review an earlier answer. Reviewed answers stay
// finalized. At index 0 this is a no-op.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return
	}
	if s.current > 0 {
		s.current--
	}
}

// Completed reports whether every answer has been finalized and the session
// advanced past the last question.
func (s *Session) Completed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateCompleted
}

// UserID returns the owning user's identifier.
func (s *Session) UserID() string { return s.userID }

// QuizID returns the quiz this session runs against.
func (s *Session) QuizID() string { return s.quizID }

// CurrentQuestion returns the question under the cursor.
func (s *Session) CurrentQuestion() domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions[s.current]
}

// Duration is the elapsed time since the session started, in whole seconds.
func (s *Session) Duration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.now().Sub(s.startedAt) / time.Second)
}

// Snapshot copies the session state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers := make([]domain.AnswerRecord, len(s.answers))
	copy(answers, s.answers)

	return Snapshot{
		UserID:       s.userID,
		QuizID:       s.quizID,
		State:        s.state.String(),
		CurrentIndex: s.current,
		Question:     s.questions[s.current],
		Answers:      answers,
	}
}

func (s *Session) score() (domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateCompleted {
		return domain.Score{}, domain.ErrSessionIncomplete
	}

	correct := 0
	for _, rec := range s.answers {
		if rec.Correct {
			correct++
		}
	}

	return domain.Score{
		CorrectCount:   correct,
		TotalQuestions: len(s.answers),
		Percentage:     percentage(correct, len(s.answers)),
	}, nil
}
