package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/ordbok/internal/database"
	"github.com/example/ordbok/internal/streak"
	"github.com/go-co-op/gocron"
)

// DefaultRefreshTime is when the nightly streak refresh runs (UTC).
const DefaultRefreshTime = "00:10"

// Scheduler manages scheduled maintenance tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	tracker   *streak.Tracker
	streaks   *database.StreakRepository
}

// New creates a new scheduler instance
func New(tracker *streak.Tracker) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		tracker:   tracker,
		streaks:   database.NewStreakRepository(),
	}
}

// Start schedules the nightly streak refresh and begins running tasks.
func (s *Scheduler) Start() error {
	at := os.Getenv("STREAK_REFRESH_TIME")
	if at == "" {
		at = DefaultRefreshTime
	}

	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.refreshStreaks); err != nil {
		return fmt.Errorf("failed to schedule streak refresh: %v", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// refreshStreaks recomputes streak counters for every user with recorded
// activity, so current_streak drops to zero after an idle day even when no
// user event triggers a recompute.
func (s *Scheduler) refreshStreaks() {
	ctx := context.Background()

	ids, err := s.streaks.UsersWithActivity(ctx)
	if err != nil {
		log.Printf("Error getting users for streak refresh: %v", err)
		return
	}

	for _, id := range ids {
		if _, _, err := s.tracker.Recompute(ctx, id); err != nil {
			log.Printf("Error refreshing streak for user %d: %v", id, err)
		}
	}
}
