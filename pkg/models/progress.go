package models

import "time"

// MasteryLevel is the ordered proficiency state of a (user, word) pair:
// shown < learning < practicing < mastered.
type MasteryLevel string

const (
	MasteryShown      MasteryLevel = "shown"
	MasteryLearning   MasteryLevel = "learning"
	MasteryPracticing MasteryLevel = "practicing"
	MasteryMastered   MasteryLevel = "mastered"
)

// WordProgress tracks one user's mastery of a single word. The mastery level
// is always recomputed from the attempt counters, never set independently.
type WordProgress struct {
	ID                 int64        `json:"id" db:"id"`
	UserID             int64        `json:"user_id" db:"user_id"`
	WordID             int64        `json:"word_id" db:"word_id"`
	MasteryLevel       MasteryLevel `json:"mastery_level" db:"mastery_level"`
	CorrectAttempts    int          `json:"correct_attempts" db:"correct_attempts"`
	TotalAttempts      int          `json:"total_attempts" db:"total_attempts"`
	LastReviewDate     *time.Time   `json:"last_review_date" db:"last_review_date"`
	NextReviewDate     *time.Time   `json:"next_review_date" db:"next_review_date"`
	RepetitionInterval int          `json:"repetition_interval" db:"repetition_interval"` // days
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// ReviewWord is a due progress record joined with its catalog entry for display.
type ReviewWord struct {
	WordProgress
	Swedish         string `json:"swedish" db:"swedish"`
	English         string `json:"english" db:"english"`
	WordType        string `json:"word_type" db:"word_type"`
	DifficultyLevel int    `json:"difficulty_level" db:"difficulty_level"`
}
