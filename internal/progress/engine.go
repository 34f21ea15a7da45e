package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ordbok/internal/database"
	"github.com/example/ordbok/internal/streak"
	"github.com/example/ordbok/pkg/models"
)

// DefaultReviewLimit caps review queries when the caller passes no limit.
const DefaultReviewLimit = 10

// Engine owns all mutations of per-word progress records and the
// totalWordsLearned counter derived from them.
type Engine struct {
	progress *database.ProgressRepository
	words    *database.WordRepository
	users    *database.UserRepository
	streaks  *streak.Tracker
}

// NewEngine creates a progress engine. The tracker may be nil in callers that
// do not want streak side effects (tests of the bare policy, tooling).
func NewEngine(tracker *streak.Tracker) *Engine {
	return &Engine{
		progress: database.NewProgressRepository(),
		words:    database.NewWordRepository(),
		users:    database.NewUserRepository(),
		streaks:  tracker,
	}
}

// RecordProgress applies one review attempt for a (user, word) pair. Each call
// represents one real attempt; the operation is not idempotent. The whole
// read-modify-write, counter increment, and streak-row write run in a single
// transaction so a failure in any step leaves no partial state.
func (e *Engine) RecordProgress(ctx context.Context, userID, wordID int64, isCorrect bool) (*models.WordProgress, error) {
	if _, err := e.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := e.words.GetByID(ctx, wordID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec, becameMastered, err := e.applyAttempt(ctx, userID, wordID, isCorrect, now)
	if errors.Is(err, database.ErrConflict) {
		// Lost an insert race on a brand new pair: a row lock cannot cover a
		// row that does not exist yet, so both writers may reach the insert.
		// The row exists now, so a second pass takes the update path.
		rec, becameMastered, err = e.applyAttempt(ctx, userID, wordID, isCorrect, now)
	}
	if err != nil {
		return nil, err
	}

	// The recompute runs after commit in its own transaction; its failure
	// leaves the recorded attempt in place but must still reach the caller.
	if becameMastered && e.streaks != nil {
		if _, _, err := e.streaks.Recompute(ctx, userID); err != nil {
			return nil, fmt.Errorf("progress recorded but streak recompute failed: %v", err)
		}
	}

	return rec, nil
}

func (e *Engine) applyAttempt(ctx context.Context, userID, wordID int64, isCorrect bool, now time.Time) (*models.WordProgress, bool, error) {
	tx, err := database.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	becameMastered := false

	rec, err := e.progress.GetByUserAndWord(ctx, tx, userID, wordID, true)
	switch {
	case errors.Is(err, database.ErrNotFound):
		rec = &models.WordProgress{
			UserID:             userID,
			WordID:             wordID,
			MasteryLevel:       models.MasteryLearning,
			TotalAttempts:      1,
			RepetitionInterval: 1,
		}
		if isCorrect {
			rec.CorrectAttempts = 1
		}
		next := now.AddDate(0, 0, 1)
		rec.LastReviewDate = &now
		rec.NextReviewDate = &next
		// ErrConflict propagates so the caller can retry as an update.
		if err := e.progress.Create(ctx, tx, rec); err != nil {
			return nil, false, err
		}
	case err != nil:
		return nil, false, err
	default:
		wasMastered := rec.MasteryLevel == models.MasteryMastered
		rec.TotalAttempts++
		if isCorrect {
			rec.CorrectAttempts++
		}
		applyTierPolicy(rec, isCorrect)

		next := now.AddDate(0, 0, rec.RepetitionInterval)
		rec.LastReviewDate = &now
		rec.NextReviewDate = &next
		if err := e.progress.Update(ctx, tx, rec); err != nil {
			return nil, false, err
		}

		// Edge-triggered: only the transition into mastered counts the word
		// as learned, so re-practicing never double counts.
		if !wasMastered && rec.MasteryLevel == models.MasteryMastered {
			becameMastered = true
			if err := e.users.IncrementWordsLearned(ctx, tx, userID); err != nil {
				return nil, false, err
			}
		}
	}

	if becameMastered && e.streaks != nil {
		if err := e.streaks.RecordActivity(ctx, tx, userID, now, streak.Activity{WordsLearned: 1}); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit progress: %v", err)
	}
	return rec, becameMastered, nil
}

// MarkShown creates shown-only records for words the user has been presented
// but never attempted, so they are not offered as new again. Words are
// identified by their Swedish headword; unknown words are skipped. Returns how
// many records were created, so a repeated call reports zero.
func (e *Engine) MarkShown(ctx context.Context, userID int64, swedishWords []string) (int, error) {
	if _, err := e.users.GetByID(ctx, userID); err != nil {
		return 0, err
	}

	created := 0
	for _, swedish := range swedishWords {
		word, err := e.words.GetBySwedish(ctx, swedish)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return created, err
		}
		ok, err := e.progress.MarkShown(ctx, userID, word.ID)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// WordsForReview returns up to limit records whose next review date has
// passed, most overdue first, joined with the catalog entries.
func (e *Engine) WordsForReview(ctx context.Context, userID int64, limit int) ([]models.ReviewWord, error) {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	return e.progress.DueForUser(ctx, userID, time.Now().UTC(), limit)
}

// LearnedWordsCount reconciles the denormalized counter against the progress
// table and returns whichever is larger, guarding against counter drift.
func (e *Engine) LearnedWordsCount(ctx context.Context, userID int64) (int, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	count, err := e.progress.CountByLevels(ctx, userID, []models.MasteryLevel{
		models.MasteryShown, models.MasteryPracticing, models.MasteryMastered,
	})
	if err != nil {
		return 0, err
	}
	if count > user.TotalWordsLearned {
		return count, nil
	}
	return user.TotalWordsLearned, nil
}
