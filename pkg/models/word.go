package models

import "time"

// Word is one Swedish-English entry in the word catalog. The catalog is
// read-only from the engine's point of view.
type Word struct {
	ID              int64     `json:"id" db:"id"`
	Swedish         string    `json:"swedish" db:"swedish"`
	English         string    `json:"english" db:"english"`
	WordType        string    `json:"word_type" db:"word_type"`                // part of speech
	DifficultyLevel int       `json:"difficulty_level" db:"difficulty_level"` // 1-5 scale
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
