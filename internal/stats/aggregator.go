package stats

import (
	"context"
	"time"

	"github.com/example/ordbok/internal/database"
	"github.com/example/ordbok/internal/streak"
	"github.com/example/ordbok/pkg/models"
)

// Windows for the dashboard rollup.
const (
	recentQuizDays     = 7
	recentQuizLimit    = 10
	recentActivityDays = 30
)

// Aggregator composes read-side rollups from the progress store, quiz
// history, and streak rows. It performs no writes.
type Aggregator struct {
	users    *database.UserRepository
	progress *database.ProgressRepository
	quizzes  *database.QuizRepository
	streaks  *database.StreakRepository
}

// NewAggregator creates a new aggregator instance
func NewAggregator() *Aggregator {
	return &Aggregator{
		users:    database.NewUserRepository(),
		progress: database.NewProgressRepository(),
		quizzes:  database.NewQuizRepository(),
		streaks:  database.NewStreakRepository(),
	}
}

// UserStats returns the dashboard rollup for one user: aggregate counters,
// the mastery histogram, recently completed quizzes, and the last month of
// daily activity. A user with no history gets zeroed counters and empty
// collections, never an error.
func (a *Aggregator) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := a.progress.LevelCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recentQuizzes, err := a.quizzes.RecentCompleted(ctx, userID, now.AddDate(0, 0, -recentQuizDays), recentQuizLimit)
	if err != nil {
		return nil, err
	}
	if recentQuizzes == nil {
		recentQuizzes = []models.QuizSession{}
	}

	since := now.AddDate(0, 0, -recentActivityDays).Format(streak.DateLayout)
	activity, err := a.streaks.RecentForUser(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		activity = []models.LearningStreak{}
	}

	return &models.UserStats{
		TotalWordsLearned: user.TotalWordsLearned,
		CurrentStreak:     user.CurrentStreak,
		LongestStreak:     user.LongestStreak,
		TotalQuizzesTaken: user.TotalQuizzesTaken,
		AverageQuizScore:  user.AverageQuizScore,
		MasteryCounts:     counts,
		RecentQuizzes:     recentQuizzes,
		RecentActivity:    activity,
	}, nil
}
