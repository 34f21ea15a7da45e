package progress

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/ordbok/internal/database"
	"github.com/example/ordbok/internal/streak"
	"github.com/example/ordbok/pkg/models"
)

func newTestDB(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	if err := database.Open(database.DialectSQLite, path); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
}

func createTestUser(t *testing.T, username string) int64 {
	t.Helper()

	user := &models.User{Username: username}
	if err := database.NewUserRepository().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user.ID
}

func createTestWord(t *testing.T, swedish, english string) int64 {
	t.Helper()

	word := &models.Word{Swedish: swedish, English: english, WordType: "noun", DifficultyLevel: 2}
	if err := database.NewWordRepository().Create(context.Background(), word); err != nil {
		t.Fatalf("failed to create word: %v", err)
	}
	return word.ID
}

func TestRecordProgressFirstAttempt(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	wordID := createTestWord(t, "hund", "dog")
	engine := NewEngine(streak.NewTracker())

	rec, err := engine.RecordProgress(ctx, userID, wordID, true)
	if err != nil {
		t.Fatalf("RecordProgress failed: %v", err)
	}
	if rec.MasteryLevel != models.MasteryLearning {
		t.Errorf("MasteryLevel = %q, want %q", rec.MasteryLevel, models.MasteryLearning)
	}
	if rec.TotalAttempts != 1 || rec.CorrectAttempts != 1 {
		t.Errorf("attempts = %d/%d, want 1/1", rec.CorrectAttempts, rec.TotalAttempts)
	}
	if rec.RepetitionInterval != 1 {
		t.Errorf("RepetitionInterval = %d, want 1", rec.RepetitionInterval)
	}
	if rec.LastReviewDate == nil || rec.NextReviewDate == nil {
		t.Fatal("review dates not set")
	}
	if got := rec.NextReviewDate.Sub(*rec.LastReviewDate); got != 24*time.Hour {
		t.Errorf("next review %v after last, want 24h", got)
	}
}

func TestRecordProgressWrongFirstAttempt(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	wordID := createTestWord(t, "katt", "cat")
	engine := NewEngine(streak.NewTracker())

	rec, err := engine.RecordProgress(ctx, userID, wordID, false)
	if err != nil {
		t.Fatalf("RecordProgress failed: %v", err)
	}
	if rec.MasteryLevel != models.MasteryLearning {
		t.Errorf("MasteryLevel = %q, want %q", rec.MasteryLevel, models.MasteryLearning)
	}
	if rec.TotalAttempts != 1 || rec.CorrectAttempts != 0 {
		t.Errorf("attempts = %d/%d, want 0/1", rec.CorrectAttempts, rec.TotalAttempts)
	}
}

func TestRecordProgressMastery(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	wordID := createTestWord(t, "bok", "book")
	engine := NewEngine(streak.NewTracker())

	var rec *models.WordProgress
	var err error
	for i := 0; i < 10; i++ {
		rec, err = engine.RecordProgress(ctx, userID, wordID, true)
		if err != nil {
			t.Fatalf("RecordProgress attempt %d failed: %v", i+1, err)
		}
		if rec.NextReviewDate.Before(*rec.LastReviewDate) {
			t.Fatalf("attempt %d: next review before last review", i+1)
		}
	}

	if rec.MasteryLevel != models.MasteryMastered {
		t.Errorf("MasteryLevel = %q, want %q", rec.MasteryLevel, models.MasteryMastered)
	}
	if rec.TotalAttempts != 10 || rec.CorrectAttempts != 10 {
		t.Errorf("attempts = %d/%d, want 10/10", rec.CorrectAttempts, rec.TotalAttempts)
	}
	// Interval path: 1,2,3,4 while learning, 6,9,13,14,14 while practicing,
	// then doubled to 28 on mastery.
	if rec.RepetitionInterval != 28 {
		t.Errorf("RepetitionInterval = %d, want 28", rec.RepetitionInterval)
	}

	user, err := database.NewUserRepository().GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if user.TotalWordsLearned != 1 {
		t.Errorf("TotalWordsLearned = %d, want 1", user.TotalWordsLearned)
	}
	if user.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", user.CurrentStreak)
	}

	streaks, err := database.NewStreakRepository().ActiveForUser(ctx, database.DB, userID)
	if err != nil {
		t.Fatalf("ActiveForUser failed: %v", err)
	}
	if len(streaks) != 1 || streaks[0].WordsLearned != 1 {
		t.Fatalf("unexpected streak rows: %+v", streaks)
	}
}

func TestRecordProgressMasteredOnlyCountedOnce(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	engine := NewEngine(streak.NewTracker())

	words := []int64{
		createTestWord(t, "hus", "house"),
		createTestWord(t, "bil", "car"),
		createTestWord(t, "sol", "sun"),
	}
	for _, wordID := range words {
		for i := 0; i < 10; i++ {
			if _, err := engine.RecordProgress(ctx, userID, wordID, true); err != nil {
				t.Fatalf("RecordProgress failed: %v", err)
			}
		}
	}
	// Re-practicing an already mastered word must not count it again.
	for i := 0; i < 3; i++ {
		if _, err := engine.RecordProgress(ctx, userID, words[0], true); err != nil {
			t.Fatalf("RecordProgress failed: %v", err)
		}
	}

	user, err := database.NewUserRepository().GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if user.TotalWordsLearned != 3 {
		t.Errorf("TotalWordsLearned = %d, want 3", user.TotalWordsLearned)
	}
}

func TestRecordProgressAtomicOnActivityFailure(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	wordID := createTestWord(t, "vinter", "winter")
	engine := NewEngine(streak.NewTracker())

	// Nine correct attempts stay below the mastered threshold and touch no
	// streak row.
	for i := 0; i < 9; i++ {
		if _, err := engine.RecordProgress(ctx, userID, wordID, true); err != nil {
			t.Fatalf("RecordProgress attempt %d failed: %v", i+1, err)
		}
	}

	// Break the streak-row write; the mastering attempt must fail as a whole,
	// leaving the record and the learned-words counter untouched.
	if _, err := database.DB.Exec("DROP TABLE learning_streaks"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}
	if _, err := engine.RecordProgress(ctx, userID, wordID, true); err == nil {
		t.Fatal("RecordProgress succeeded with a failing activity write")
	}

	rec, err := database.NewProgressRepository().GetByUserAndWord(ctx, database.DB, userID, wordID, false)
	if err != nil {
		t.Fatalf("GetByUserAndWord failed: %v", err)
	}
	if rec.TotalAttempts != 9 || rec.MasteryLevel == models.MasteryMastered {
		t.Errorf("partial state left behind: attempts=%d level=%q", rec.TotalAttempts, rec.MasteryLevel)
	}

	user, err := database.NewUserRepository().GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if user.TotalWordsLearned != 0 {
		t.Errorf("TotalWordsLearned = %d, want 0 after rollback", user.TotalWordsLearned)
	}
}

func TestRecordProgressNotFound(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	wordID := createTestWord(t, "träd", "tree")
	engine := NewEngine(streak.NewTracker())

	if _, err := engine.RecordProgress(ctx, 9999, wordID, true); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("unknown user: err = %v, want ErrNotFound", err)
	}
	if _, err := engine.RecordProgress(ctx, userID, 9999, true); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("unknown word: err = %v, want ErrNotFound", err)
	}
}

func TestMarkShownIdempotent(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	word1 := createTestWord(t, "fisk", "fish")
	createTestWord(t, "gata", "street")
	engine := NewEngine(streak.NewTracker())

	created, err := engine.MarkShown(ctx, userID, []string{"fisk", "gata"})
	if err != nil {
		t.Fatalf("MarkShown failed: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	created, err = engine.MarkShown(ctx, userID, []string{"fisk", "gata"})
	if err != nil {
		t.Fatalf("second MarkShown failed: %v", err)
	}
	if created != 0 {
		t.Errorf("second call created = %d, want 0", created)
	}

	rec, err := database.NewProgressRepository().GetByUserAndWord(ctx, database.DB, userID, word1, false)
	if err != nil {
		t.Fatalf("GetByUserAndWord failed: %v", err)
	}
	if rec.MasteryLevel != models.MasteryShown {
		t.Errorf("MasteryLevel = %q, want %q", rec.MasteryLevel, models.MasteryShown)
	}
	if rec.TotalAttempts != 0 || rec.CorrectAttempts != 0 {
		t.Errorf("attempts = %d/%d, want 0/0", rec.CorrectAttempts, rec.TotalAttempts)
	}
	if rec.LastReviewDate != nil || rec.NextReviewDate != nil {
		t.Error("shown-only record must not have review dates")
	}
}

func TestMarkShownSkipsUnknownWords(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	createTestWord(t, "dag", "day")
	engine := NewEngine(streak.NewTracker())

	created, err := engine.MarkShown(ctx, userID, []string{"dag", "finnsinte"})
	if err != nil {
		t.Fatalf("MarkShown failed: %v", err)
	}
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
}

func TestMarkShownThenAttempt(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	wordID := createTestWord(t, "natt", "night")
	engine := NewEngine(streak.NewTracker())

	if _, err := engine.MarkShown(ctx, userID, []string{"natt"}); err != nil {
		t.Fatalf("MarkShown failed: %v", err)
	}
	rec, err := engine.RecordProgress(ctx, userID, wordID, true)
	if err != nil {
		t.Fatalf("RecordProgress failed: %v", err)
	}
	if rec.MasteryLevel != models.MasteryLearning {
		t.Errorf("MasteryLevel = %q, want %q", rec.MasteryLevel, models.MasteryLearning)
	}
	if rec.TotalAttempts != 1 || rec.CorrectAttempts != 1 {
		t.Errorf("attempts = %d/%d, want 1/1", rec.CorrectAttempts, rec.TotalAttempts)
	}
}

func TestWordsForReview(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	engine := NewEngine(streak.NewTracker())
	repo := database.NewProgressRepository()

	now := time.Now().UTC()
	seed := []struct {
		swedish string
		due     time.Time
	}{
		{"ett", now.Add(-48 * time.Hour)},
		{"två", now.Add(-1 * time.Hour)},
		{"tre", now.Add(24 * time.Hour)},
	}
	for i, s := range seed {
		wordID := createTestWord(t, s.swedish, fmt.Sprintf("number-%d", i))
		last := s.due.Add(-24 * time.Hour)
		due := s.due
		rec := &models.WordProgress{
			UserID:             userID,
			WordID:             wordID,
			MasteryLevel:       models.MasteryLearning,
			CorrectAttempts:    1,
			TotalAttempts:      1,
			LastReviewDate:     &last,
			NextReviewDate:     &due,
			RepetitionInterval: 1,
		}
		if err := repo.Create(ctx, database.DB, rec); err != nil {
			t.Fatalf("failed to seed progress: %v", err)
		}
	}

	due, err := engine.WordsForReview(ctx, userID, 5)
	if err != nil {
		t.Fatalf("WordsForReview failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("got %d due words, want 2", len(due))
	}
	if due[0].Swedish != "ett" || due[1].Swedish != "två" {
		t.Errorf("wrong order: %q, %q", due[0].Swedish, due[1].Swedish)
	}
	for _, rw := range due {
		if rw.NextReviewDate.After(time.Now().UTC()) {
			t.Errorf("word %q not yet due was returned", rw.Swedish)
		}
	}

	capped, err := engine.WordsForReview(ctx, userID, 1)
	if err != nil {
		t.Fatalf("WordsForReview failed: %v", err)
	}
	if len(capped) != 1 || capped[0].Swedish != "ett" {
		t.Fatalf("limit not applied: %+v", capped)
	}
}

func TestLearnedWordsCount(t *testing.T) {
	newTestDB(t)
	ctx := context.Background()
	userID := createTestUser(t, "astrid")
	createTestWord(t, "en", "one")
	createTestWord(t, "och", "and")
	createTestWord(t, "jag", "i")
	engine := NewEngine(streak.NewTracker())

	if _, err := engine.MarkShown(ctx, userID, []string{"en", "och", "jag"}); err != nil {
		t.Fatalf("MarkShown failed: %v", err)
	}

	// Counter behind the progress table: the larger value wins.
	count, err := engine.LearnedWordsCount(ctx, userID)
	if err != nil {
		t.Fatalf("LearnedWordsCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	// Counter ahead of the progress table: still the larger value.
	users := database.NewUserRepository()
	for i := 0; i < 5; i++ {
		if err := users.IncrementWordsLearned(ctx, database.DB, userID); err != nil {
			t.Fatalf("IncrementWordsLearned failed: %v", err)
		}
	}
	count, err = engine.LearnedWordsCount(ctx, userID)
	if err != nil {
		t.Fatalf("LearnedWordsCount failed: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}
