package models

// UserStats is the dashboard rollup for one user. Composed read-side only;
// a user with zero history gets zeroed counters and empty collections.
type UserStats struct {
	TotalWordsLearned int                  `json:"total_words_learned"`
	CurrentStreak     int                  `json:"current_streak"`
	LongestStreak     int                  `json:"longest_streak"`
	TotalQuizzesTaken int                  `json:"total_quizzes_taken"`
	AverageQuizScore  float64              `json:"average_quiz_score"`
	MasteryCounts     map[MasteryLevel]int `json:"mastery_counts"`
	RecentQuizzes     []QuizSession        `json:"recent_quizzes"`
	RecentActivity    []LearningStreak     `json:"recent_activity"`
}
