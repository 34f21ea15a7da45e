package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/ordbok/pkg/models"
	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for user records and their
// aggregate learning counters
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := DB.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetForUpdate returns a user inside the caller's transaction, locking the row
// on backends that support row locks. On SQLite the single writer connection
// already serializes access.
func (r *UserRepository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id int64) (*models.User, error) {
	query := "SELECT * FROM users WHERE id = $1"
	if Dialect() == DialectPostgres {
		query += " FOR UPDATE"
	}

	var user models.User
	err := sqlx.GetContext(ctx, q, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// Create inserts a new user with zeroed counters
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := "INSERT INTO users (username) VALUES ($1)"

	if Dialect() == DialectPostgres {
		err := DB.QueryRowContext(ctx, query+" RETURNING id", user.Username).Scan(&user.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
			}
			return fmt.Errorf("failed to create user: %v", err)
		}
	} else {
		result, err := DB.ExecContext(ctx, query, user.Username)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
			}
			return fmt.Errorf("failed to create user: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		user.ID = id
	}

	created, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

// IncrementWordsLearned bumps the learned-words counter by exactly one. Called
// only on a transition into mastered, inside the same transaction.
func (r *UserRepository) IncrementWordsLearned(ctx context.Context, q sqlx.ExtContext, userID int64) error {
	result, err := q.ExecContext(ctx, `
		UPDATE users SET
			total_words_learned = total_words_learned + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to increment words learned: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// UpdateStreaks persists recomputed streak counters onto the user row, inside
// the caller's transaction
func (r *UserRepository) UpdateStreaks(ctx context.Context, q sqlx.ExtContext, userID int64, current, longest int) error {
	result, err := q.ExecContext(ctx, `
		UPDATE users SET
			current_streak = $1,
			longest_streak = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`, current, longest, userID)
	if err != nil {
		return fmt.Errorf("failed to update streaks: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// UpdateQuizAggregates persists the recomputed quiz counters. The values are a
// materialized view over completed sessions, recomputed by the caller inside
// the finishing transaction.
func (r *UserRepository) UpdateQuizAggregates(ctx context.Context, q sqlx.ExtContext, userID int64, taken int, avgScore float64) error {
	result, err := q.ExecContext(ctx, `
		UPDATE users SET
			total_quizzes_taken = $1,
			average_quiz_score = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`, taken, avgScore, userID)
	if err != nil {
		return fmt.Errorf("failed to update quiz aggregates: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// Delete removes a user. Progress, sessions, and streak rows cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := DB.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
