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

// QuizRepository handles database operations for quiz sessions and their
// answers. Session ids are caller-provided UUID strings.
type QuizRepository struct{}

// NewQuizRepository creates a new repository instance
func NewQuizRepository() *QuizRepository {
	return &QuizRepository{}
}

// CreateSession inserts a new session in the created state
func (r *QuizRepository) CreateSession(ctx context.Context, session *models.QuizSession) error {
	session.CreatedAt = time.Now().UTC()
	_, err := DB.ExecContext(ctx, `
		INSERT INTO quiz_sessions (
			id, user_id, quiz_type, status, total_questions, correct_answers, score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID,
		session.UserID,
		session.QuizType,
		session.Status,
		session.TotalQuestions,
		session.CorrectAnswers,
		session.Score,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz session: %v", err)
	}
	return nil
}

// GetSession returns a session by id. With forUpdate set, the row is locked on
// backends that support row locks.
func (r *QuizRepository) GetSession(ctx context.Context, q sqlx.ExtContext, id string, forUpdate bool) (*models.QuizSession, error) {
	query := "SELECT * FROM quiz_sessions WHERE id = $1"
	if forUpdate && Dialect() == DialectPostgres {
		query += " FOR UPDATE"
	}

	var session models.QuizSession
	err := sqlx.GetContext(ctx, q, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz session %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz session: %v", err)
	}
	return &session, nil
}

// UpdateSessionProgress records the running correct-answer count and score
func (r *QuizRepository) UpdateSessionProgress(ctx context.Context, q sqlx.ExtContext, id string, correctAnswers int, score float64, status string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE quiz_sessions SET
			correct_answers = $1,
			score = $2,
			status = $3
		WHERE id = $4`,
		correctAnswers, score, status, id)
	if err != nil {
		return fmt.Errorf("failed to update quiz session: %v", err)
	}
	return nil
}

// CompleteSession finalizes a session
func (r *QuizRepository) CompleteSession(ctx context.Context, q sqlx.ExtContext, id string, timeSpent int, completedAt time.Time) error {
	result, err := q.ExecContext(ctx, `
		UPDATE quiz_sessions SET
			status = $1,
			time_spent = $2,
			completed_at = $3
		WHERE id = $4`,
		models.SessionCompleted, timeSpent, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to complete quiz session: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("quiz session %q: %w", id, ErrNotFound)
	}
	return nil
}

// CreateAnswer appends an immutable answer row to a session
func (r *QuizRepository) CreateAnswer(ctx context.Context, q sqlx.ExtContext, answer *models.QuizAnswer) error {
	answer.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO quiz_answers (
			session_id, word_id, user_answer, correct_answer, is_correct, answer_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	args := []interface{}{
		answer.SessionID,
		answer.WordID,
		answer.UserAnswer,
		answer.CorrectAnswer,
		answer.IsCorrect,
		answer.AnswerTime,
		answer.CreatedAt,
	}

	if Dialect() == DialectPostgres {
		err := q.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&answer.ID)
		if err != nil {
			return fmt.Errorf("failed to create quiz answer: %v", err)
		}
		return nil
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create quiz answer: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	answer.ID = id
	return nil
}

// CountAnswers returns how many answers a session already has
func (r *QuizRepository) CountAnswers(ctx context.Context, q sqlx.ExtContext, sessionID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, "SELECT COUNT(*) FROM quiz_answers WHERE session_id = $1", sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to count quiz answers: %v", err)
	}
	return count, nil
}

// AnswersForSession returns a session's answers in the order they were given
func (r *QuizRepository) AnswersForSession(ctx context.Context, sessionID string) ([]models.QuizAnswer, error) {
	var answers []models.QuizAnswer
	err := DB.SelectContext(ctx, &answers,
		"SELECT * FROM quiz_answers WHERE session_id = $1 ORDER BY id ASC", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz answers: %v", err)
	}
	return answers, nil
}

// CompletedAggregates returns the user's completed-session count and mean
// score, recomputed from session history rather than incremented in place.
func (r *QuizRepository) CompletedAggregates(ctx context.Context, q sqlx.ExtContext, userID int64) (int, float64, error) {
	var taken int
	var avgScore float64
	err := q.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(score), 0)
		FROM quiz_sessions
		WHERE user_id = $1 AND status = $2`,
		userID, models.SessionCompleted,
	).Scan(&taken, &avgScore)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get quiz aggregates: %v", err)
	}
	return taken, avgScore, nil
}

// RecentCompleted returns the user's most recently completed sessions since
// the given time, newest first
func (r *QuizRepository) RecentCompleted(ctx context.Context, userID int64, since time.Time, limit int) ([]models.QuizSession, error) {
	var sessions []models.QuizSession
	err := DB.SelectContext(ctx, &sessions, `
		SELECT * FROM quiz_sessions
		WHERE user_id = $1 AND status = $2 AND completed_at >= $3
		ORDER BY completed_at DESC
		LIMIT $4`,
		userID, models.SessionCompleted, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent quiz sessions: %v", err)
	}
	return sessions, nil
}
