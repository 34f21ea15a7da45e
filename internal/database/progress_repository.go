package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/ordbok/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ProgressRepository handles database operations for per-(user, word)
// progress records. Mutating methods take an sqlx.ExtContext so the engine can
// run a read-modify-write cycle under one transaction.
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// GetByUserAndWord returns the progress record for a specific pair. With
// forUpdate set, the row is locked on backends that support row locks; on
// SQLite the single writer connection already serializes access.
func (r *ProgressRepository) GetByUserAndWord(ctx context.Context, q sqlx.ExtContext, userID, wordID int64, forUpdate bool) (*models.WordProgress, error) {
	query := "SELECT * FROM user_word_progress WHERE user_id = $1 AND word_id = $2"
	if forUpdate && Dialect() == DialectPostgres {
		query += " FOR UPDATE"
	}

	var progress models.WordProgress
	err := sqlx.GetContext(ctx, q, &progress, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress for user %d word %d: %w", userID, wordID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress record: %v", err)
	}
	return &progress, nil
}

// Create inserts a new progress record
func (r *ProgressRepository) Create(ctx context.Context, q sqlx.ExtContext, progress *models.WordProgress) error {
	now := time.Now().UTC()
	progress.CreatedAt = now
	progress.UpdatedAt = now

	query := `
		INSERT INTO user_word_progress (
			user_id, word_id, mastery_level, correct_attempts, total_attempts,
			last_review_date, next_review_date, repetition_interval, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	args := []interface{}{
		progress.UserID,
		progress.WordID,
		progress.MasteryLevel,
		progress.CorrectAttempts,
		progress.TotalAttempts,
		progress.LastReviewDate,
		progress.NextReviewDate,
		progress.RepetitionInterval,
		progress.CreatedAt,
		progress.UpdatedAt,
	}

	if Dialect() == DialectPostgres {
		err := q.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&progress.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("progress for user %d word %d: %w", progress.UserID, progress.WordID, ErrConflict)
			}
			return fmt.Errorf("failed to create progress record: %v", err)
		}
		return nil
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("progress for user %d word %d: %w", progress.UserID, progress.WordID, ErrConflict)
		}
		return fmt.Errorf("failed to create progress record: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	progress.ID = id
	return nil
}

// Update modifies an existing progress record
func (r *ProgressRepository) Update(ctx context.Context, q sqlx.ExtContext, progress *models.WordProgress) error {
	progress.UpdatedAt = time.Now().UTC()

	result, err := q.ExecContext(ctx, `
		UPDATE user_word_progress SET
			mastery_level = $1,
			correct_attempts = $2,
			total_attempts = $3,
			last_review_date = $4,
			next_review_date = $5,
			repetition_interval = $6,
			updated_at = $7
		WHERE id = $8`,
		progress.MasteryLevel,
		progress.CorrectAttempts,
		progress.TotalAttempts,
		progress.LastReviewDate,
		progress.NextReviewDate,
		progress.RepetitionInterval,
		progress.UpdatedAt,
		progress.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress record: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("progress record %d: %w", progress.ID, ErrNotFound)
	}
	return nil
}

// MarkShown creates a shown-only record if none exists yet. Reports whether a
// new record was created; existing records are left untouched, which makes the
// operation idempotent.
func (r *ProgressRepository) MarkShown(ctx context.Context, userID, wordID int64) (bool, error) {
	result, err := DB.ExecContext(ctx, `
		INSERT INTO user_word_progress (
			user_id, word_id, mastery_level, correct_attempts, total_attempts, repetition_interval
		) VALUES ($1, $2, $3, 0, 0, 1)
		ON CONFLICT (user_id, word_id) DO NOTHING`,
		userID, wordID, models.MasteryShown)
	if err != nil {
		return false, fmt.Errorf("failed to mark word shown: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %v", err)
	}
	return rows > 0, nil
}

// DueForUser returns records whose next review date has passed, most overdue
// first, joined with the catalog entry for display. Times are stored in UTC so
// the comparison is well-defined on both backends.
func (r *ProgressRepository) DueForUser(ctx context.Context, userID int64, now time.Time, limit int) ([]models.ReviewWord, error) {
	var due []models.ReviewWord
	err := DB.SelectContext(ctx, &due, `
		SELECT p.*, w.swedish, w.english, w.word_type, w.difficulty_level
		FROM user_word_progress p
		JOIN words w ON w.id = p.word_id
		WHERE p.user_id = $1
		  AND p.next_review_date IS NOT NULL
		  AND p.next_review_date <= $2
		ORDER BY p.next_review_date ASC
		LIMIT $3`,
		userID, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due words: %v", err)
	}
	return due, nil
}

// CountByLevels returns how many of the user's records sit at any of the given
// mastery levels
func (r *ProgressRepository) CountByLevels(ctx context.Context, userID int64, levels []models.MasteryLevel) (int, error) {
	query, args, err := sqlx.In(
		"SELECT COUNT(*) FROM user_word_progress WHERE user_id = ? AND mastery_level IN (?)",
		userID, levels)
	if err != nil {
		return 0, fmt.Errorf("failed to build level count query: %v", err)
	}

	var count int
	if err := DB.GetContext(ctx, &count, DB.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count progress records: %v", err)
	}
	return count, nil
}

// LevelCounts returns the user's mastery-level histogram
func (r *ProgressRepository) LevelCounts(ctx context.Context, userID int64) (map[models.MasteryLevel]int, error) {
	rows, err := DB.QueryxContext(ctx, `
		SELECT mastery_level, COUNT(*) AS cnt
		FROM user_word_progress
		WHERE user_id = $1
		GROUP BY mastery_level`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get level counts: %v", err)
	}
	defer rows.Close()

	counts := make(map[models.MasteryLevel]int)
	for rows.Next() {
		var level models.MasteryLevel
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan level count: %v", err)
		}
		counts[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read level counts: %v", err)
	}
	return counts, nil
}
