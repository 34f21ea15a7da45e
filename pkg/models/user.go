package models

import "time"

// User carries the denormalized learning counters for one account. The
// counters are caches over progress, streak, and session history; the engine
// keeps them consistent on every mutation.
type User struct {
	ID                int64     `json:"id" db:"id"`
	Username          string    `json:"username" db:"username"`
	TotalWordsLearned int       `json:"total_words_learned" db:"total_words_learned"`
	CurrentStreak     int       `json:"current_streak" db:"current_streak"`
	LongestStreak     int       `json:"longest_streak" db:"longest_streak"`
	TotalQuizzesTaken int       `json:"total_quizzes_taken" db:"total_quizzes_taken"`
	AverageQuizScore  float64   `json:"average_quiz_score" db:"average_quiz_score"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
