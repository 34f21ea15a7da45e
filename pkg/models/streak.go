package models

// LearningStreak is one user's recorded activity for a single calendar day.
// Rows are merged additively, never overwritten.
type LearningStreak struct {
	ID           int64  `json:"id" db:"id"`
	UserID       int64  `json:"user_id" db:"user_id"`
	Date         string `json:"date" db:"date"` // YYYY-MM-DD
	WordsLearned int    `json:"words_learned" db:"words_learned"`
	QuizzesTaken int    `json:"quizzes_taken" db:"quizzes_taken"`
	TimeSpent    int    `json:"time_spent" db:"time_spent"` // minutes
	IsActive     bool   `json:"is_active" db:"is_active"`
}
