package database

import (
	"context"
	"fmt"

	"github.com/example/ordbok/pkg/models"
	"github.com/jmoiron/sqlx"
)

// StreakRepository handles database operations for daily learning activity
type StreakRepository struct{}

// NewStreakRepository creates a new repository instance
func NewStreakRepository() *StreakRepository {
	return &StreakRepository{}
}

// Upsert merges activity deltas into the row for (user, date), creating it if
// needed. Values add up; they are never overwritten. The row is always left
// active. Takes an sqlx.ExtContext so the write can join the caller's
// transaction.
func (r *StreakRepository) Upsert(ctx context.Context, q sqlx.ExtContext, userID int64, date string, wordsLearned, quizzesTaken, timeSpent int) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO learning_streaks (user_id, date, words_learned, quizzes_taken, time_spent, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		ON CONFLICT (user_id, date) DO UPDATE SET
			words_learned = learning_streaks.words_learned + excluded.words_learned,
			quizzes_taken = learning_streaks.quizzes_taken + excluded.quizzes_taken,
			time_spent = learning_streaks.time_spent + excluded.time_spent,
			is_active = true`,
		userID, date, wordsLearned, quizzesTaken, timeSpent)
	if err != nil {
		return fmt.Errorf("failed to upsert learning streak: %v", err)
	}
	return nil
}

// ActiveForUser returns all active streak rows for a user, newest first
func (r *StreakRepository) ActiveForUser(ctx context.Context, q sqlx.ExtContext, userID int64) ([]models.LearningStreak, error) {
	var streaks []models.LearningStreak
	err := sqlx.SelectContext(ctx, q, &streaks, `
		SELECT * FROM learning_streaks
		WHERE user_id = $1 AND is_active = true
		ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning streaks: %v", err)
	}
	return streaks, nil
}

// RecentForUser returns streak rows on or after sinceDate (YYYY-MM-DD),
// newest first
func (r *StreakRepository) RecentForUser(ctx context.Context, userID int64, sinceDate string) ([]models.LearningStreak, error) {
	var streaks []models.LearningStreak
	err := DB.SelectContext(ctx, &streaks, `
		SELECT * FROM learning_streaks
		WHERE user_id = $1 AND date >= $2
		ORDER BY date DESC`, userID, sinceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent learning streaks: %v", err)
	}
	return streaks, nil
}

// UsersWithActivity returns ids of every user with at least one streak row.
// Used by the nightly streak refresh.
func (r *StreakRepository) UsersWithActivity(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := DB.SelectContext(ctx, &ids, "SELECT DISTINCT user_id FROM learning_streaks")
	if err != nil {
		return nil, fmt.Errorf("failed to get users with activity: %v", err)
	}
	return ids, nil
}
