package database

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ordbok/pkg/models"
)

func seedUserAndWord(t *testing.T) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Username: "astrid"}
	if err := NewUserRepository().Create(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	word := &models.Word{Swedish: "hund", English: "dog", WordType: "noun", DifficultyLevel: 1}
	if err := NewWordRepository().Create(ctx, word); err != nil {
		t.Fatalf("failed to create word: %v", err)
	}
	return user.ID, word.ID
}

func TestProgressCreateDuplicatePair(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID, wordID := seedUserAndWord(t)
	repo := NewProgressRepository()

	first := &models.WordProgress{
		UserID:             userID,
		WordID:             wordID,
		MasteryLevel:       models.MasteryLearning,
		TotalAttempts:      1,
		RepetitionInterval: 1,
	}
	if err := repo.Create(ctx, DB, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A second insert for the same pair loses the unique constraint and must
	// surface the sentinel the engine's insert-race retry keys on.
	dup := &models.WordProgress{
		UserID:             userID,
		WordID:             wordID,
		MasteryLevel:       models.MasteryLearning,
		TotalAttempts:      1,
		RepetitionInterval: 1,
	}
	if err := repo.Create(ctx, DB, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate pair: err = %v, want ErrConflict", err)
	}

	got, err := repo.GetByUserAndWord(ctx, DB, userID, wordID, false)
	if err != nil {
		t.Fatalf("GetByUserAndWord failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("row id = %d, want %d", got.ID, first.ID)
	}
}
