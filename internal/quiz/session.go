package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ordbok/internal/database"
	"github.com/example/ordbok/internal/progress"
	"github.com/example/ordbok/internal/streak"
	"github.com/example/ordbok/pkg/models"
	"github.com/google/uuid"
)

// QuizType represents the kind of quiz a session runs
type QuizType string

const (
	Vocabulary     QuizType = "vocabulary"
	Translation    QuizType = "translation"
	MultipleChoice QuizType = "multiple_choice"
	Flashcard      QuizType = "flashcard"
	Mixed          QuizType = "mixed"
)

// Valid reports whether t is one of the supported quiz types
func (t QuizType) Valid() bool {
	switch t {
	case Vocabulary, Translation, MultipleChoice, Flashcard, Mixed:
		return true
	}
	return false
}

// Validation errors, all rejected before any write.
var (
	ErrInvalidQuizType  = errors.New("invalid quiz type")
	ErrInvalidQuestions = errors.New("total questions must be positive")
	ErrInvalidTime      = errors.New("time must be non-negative")
	ErrMissingField     = errors.New("missing required field")
	ErrSessionCompleted = errors.New("session already completed")
	ErrSessionFull      = errors.New("all questions already answered")
)

// Manager drives the quiz session lifecycle:
// created -> answering -> completed, with no way back.
type Manager struct {
	sessions *database.QuizRepository
	users    *database.UserRepository
	words    *database.WordRepository
	engine   *progress.Engine
	streaks  *streak.Tracker
}

// NewManager creates a session manager wired to the progress engine and the
// streak tracker.
func NewManager(engine *progress.Engine, tracker *streak.Tracker) *Manager {
	return &Manager{
		sessions: database.NewQuizRepository(),
		users:    database.NewUserRepository(),
		words:    database.NewWordRepository(),
		engine:   engine,
		streaks:  tracker,
	}
}

// StartSession creates a new session in the created state.
func (m *Manager) StartSession(ctx context.Context, userID int64, quizType QuizType, totalQuestions int) (*models.QuizSession, error) {
	if !quizType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuizType, quizType)
	}
	if totalQuestions <= 0 {
		return nil, ErrInvalidQuestions
	}
	if _, err := m.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	session := &models.QuizSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		QuizType:       string(quizType),
		Status:         models.SessionCreated,
		TotalQuestions: totalQuestions,
	}
	if err := m.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RecordAnswer grades and appends one answer, updates the session's running
// score, and records word progress for the attempt. Progress is applied here,
// per answer, and exactly once; finishing the session does not replay it.
func (m *Manager) RecordAnswer(ctx context.Context, sessionID string, wordID int64, userAnswer, correctAnswer string, answerTime int) (*models.QuizAnswer, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id", ErrMissingField)
	}
	if wordID == 0 {
		return nil, fmt.Errorf("%w: word_id", ErrMissingField)
	}
	if correctAnswer == "" {
		return nil, fmt.Errorf("%w: correct_answer", ErrMissingField)
	}
	if answerTime < 0 {
		return nil, fmt.Errorf("%w: answer_time", ErrInvalidTime)
	}
	if _, err := m.words.GetByID(ctx, wordID); err != nil {
		return nil, err
	}

	tx, err := database.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	session, err := m.sessions.GetSession(ctx, tx, sessionID, true)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted {
		return nil, fmt.Errorf("quiz session %q: %w", sessionID, ErrSessionCompleted)
	}
	answered, err := m.sessions.CountAnswers(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if answered >= session.TotalQuestions {
		return nil, fmt.Errorf("quiz session %q: %w", sessionID, ErrSessionFull)
	}

	answer := &models.QuizAnswer{
		SessionID:     sessionID,
		WordID:        wordID,
		UserAnswer:    userAnswer,
		CorrectAnswer: correctAnswer,
		IsCorrect:     grade(userAnswer, correctAnswer),
		AnswerTime:    answerTime,
	}
	if err := m.sessions.CreateAnswer(ctx, tx, answer); err != nil {
		return nil, err
	}

	if answer.IsCorrect {
		session.CorrectAnswers++
	}
	score := float64(session.CorrectAnswers) / float64(session.TotalQuestions) * 100
	if err := m.sessions.UpdateSessionProgress(ctx, tx, sessionID, session.CorrectAnswers, score, models.SessionAnswering); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit answer: %v", err)
	}

	if _, err := m.engine.RecordProgress(ctx, session.UserID, wordID, answer.IsCorrect); err != nil {
		return nil, fmt.Errorf("answer recorded but progress update failed: %v", err)
	}
	return answer, nil
}

// FinishSession finalizes a session, recomputes the user's quiz counters from
// completed-session history, and records the day's quiz activity on the
// streak. The session, counter, and streak-row writes are one atomic unit.
func (m *Manager) FinishSession(ctx context.Context, sessionID string, timeSpent int) (*models.QuizSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id", ErrMissingField)
	}
	if timeSpent < 0 {
		return nil, fmt.Errorf("%w: time_spent", ErrInvalidTime)
	}

	tx, err := database.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	session, err := m.sessions.GetSession(ctx, tx, sessionID, true)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted {
		return nil, fmt.Errorf("quiz session %q: %w", sessionID, ErrSessionCompleted)
	}

	now := time.Now().UTC()
	if err := m.sessions.CompleteSession(ctx, tx, sessionID, timeSpent, now); err != nil {
		return nil, err
	}
	taken, avgScore, err := m.sessions.CompletedAggregates(ctx, tx, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := m.users.UpdateQuizAggregates(ctx, tx, session.UserID, taken, avgScore); err != nil {
		return nil, err
	}

	// The day's quiz activity belongs to the same atomic unit as the session
	// and counter writes: a failure here rolls everything back.
	minutes := (timeSpent + 30) / 60
	if err := m.streaks.RecordActivity(ctx, tx, session.UserID, now, streak.Activity{QuizzesTaken: 1, TimeSpent: minutes}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session completion: %v", err)
	}

	session.Status = models.SessionCompleted
	session.TimeSpent = &timeSpent
	session.CompletedAt = &now

	if _, _, err := m.streaks.Recompute(ctx, session.UserID); err != nil {
		return nil, fmt.Errorf("session completed but streak recompute failed: %v", err)
	}

	return session, nil
}

// Answers returns a session's recorded answers in order.
func (m *Manager) Answers(ctx context.Context, sessionID string) ([]models.QuizAnswer, error) {
	return m.sessions.AnswersForSession(ctx, sessionID)
}

// grade compares answers case-insensitively, ignoring surrounding whitespace.
func grade(userAnswer, correctAnswer string) bool {
	return strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(correctAnswer))
}
