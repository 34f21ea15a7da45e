package models

import "time"

// Quiz session lifecycle states. Transitions are linear:
// created -> answering -> completed.
const (
	SessionCreated   = "created"
	SessionAnswering = "answering"
	SessionCompleted = "completed"
)

// QuizSession is one bounded quiz attempt.
type QuizSession struct {
	ID             string     `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	QuizType       string     `json:"quiz_type" db:"quiz_type"`
	Status         string     `json:"status" db:"status"`
	TotalQuestions int        `json:"total_questions" db:"total_questions"`
	CorrectAnswers int        `json:"correct_answers" db:"correct_answers"`
	Score          float64    `json:"score" db:"score"` // 0-100
	TimeSpent      *int       `json:"time_spent" db:"time_spent"` // seconds
	CompletedAt    *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// QuizAnswer is one answered question within a session. Immutable once created.
type QuizAnswer struct {
	ID            int64     `json:"id" db:"id"`
	SessionID     string    `json:"session_id" db:"session_id"`
	WordID        int64     `json:"word_id" db:"word_id"`
	UserAnswer    string    `json:"user_answer" db:"user_answer"`
	CorrectAnswer string    `json:"correct_answer" db:"correct_answer"`
	IsCorrect     bool      `json:"is_correct" db:"is_correct"`
	AnswerTime    int       `json:"answer_time" db:"answer_time"` // seconds spent on the question
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
