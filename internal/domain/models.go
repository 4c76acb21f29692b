package domain

import (
	"sort"
	"time"
)

// Question is one MCQ item from a week's lesson content. Options keep the
// order the content store returns them in; CorrectOption indexes into Options.
type Question struct {
	ID            string   `json:"id"`
	Day           string   `json:"day"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// Quiz is the question document for one week. Days lists the day tags the
// quiz requires coverage for; an empty list means no coverage requirement.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Days      []string   `json:"days,omitempty"`
	Questions []Question `json:"questions"`
}

// PlayableQuestions returns the quiz's questions in stable order, or
// ErrQuizUnavailable when the quiz is empty or a required day tag has no
// question. A quiz missing weekday coverage must not start as a partial quiz.
func (q Quiz) PlayableQuestions() ([]Question, error) {
	if len(q.Questions) == 0 {
		return nil, ErrQuizUnavailable
	}

	if len(q.Days) > 0 {
		covered := make(map[string]bool, len(q.Days))
		for _, question := range q.Questions {
			covered[question.Day] = true
		}
		for _, day := range q.Days {
			if !covered[day] {
				return nil, ErrQuizUnavailable
			}
		}
	}

	return q.Questions, nil
}

// AnswerRecord tracks one question's answer within a session. Selected is -1
// until the user picks an option. Finalized flips exactly once, when the
// answer is checked; Correct is meaningful only after that.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Selected   int    `json:"selected"`
	Finalized  bool   `json:"finalized"`
	Correct    bool   `json:"correct"`
}

// Score summarizes a completed session.
type Score struct {
	CorrectCount   int `json:"correctCount"`
	TotalQuestions int `json:"totalQuestions"`
	Percentage     int `json:"percentage"`
}

// RankingEntry is a persisted, immutable record of one scored attempt.
// At most one exists per (UserID, QuizID).
type RankingEntry struct {
	UserID          string    `json:"userId"`
	DisplayName     string    `json:"displayName"`
	QuizID          string    `json:"quizId"`
	ScorePercentage int       `json:"scorePercentage"`
	CorrectCount    int       `json:"correctCount"`
	TotalQuestions  int       `json:"totalQuestions"`
	DurationSeconds *int      `json:"durationSeconds,omitempty"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// Ranking is the ordered scoreboard for a quiz.
type Ranking struct {
	QuizID    string         `json:"quizId"`
	Entries   []RankingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Less reports whether a ranks above b: higher score first, earlier
// submission wins a tie, then display name and user id for a total order.
// Every ranking and placement computation must go through this rule.
func Less(a, b RankingEntry) bool {
	if a.ScorePercentage != b.ScorePercentage {
		return a.ScorePercentage > b.ScorePercentage
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	if a.DisplayName != b.DisplayName {
		return a.DisplayName < b.DisplayName
	}
	return a.UserID < b.UserID
}

// SortRanking orders entries in place by the shared ranking rule.
func SortRanking(entries []RankingEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}
