package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ordbok/internal/database"
	"github.com/jmoiron/sqlx"
)

// DateLayout is the calendar-day key format used in the learning_streaks table.
const DateLayout = "2006-01-02"

// ErrNegativeActivity is returned when an activity delta is negative. Rejected
// before any write.
var ErrNegativeActivity = errors.New("activity deltas must be non-negative")

// Activity is one day's worth of learning deltas.
type Activity struct {
	WordsLearned int
	QuizzesTaken int
	TimeSpent    int // minutes
}

// Tracker aggregates daily activity and maintains the user's consecutive-day
// streak counters.
type Tracker struct {
	streaks *database.StreakRepository
	users   *database.UserRepository
}

// NewTracker creates a new tracker instance
func NewTracker() *Tracker {
	return &Tracker{
		streaks: database.NewStreakRepository(),
		users:   database.NewUserRepository(),
	}
}

// RecordActivity merges the deltas into the user's row for the given day.
// Takes an sqlx.ExtContext so the write can run inside the transaction of the
// event that produced the activity.
func (t *Tracker) RecordActivity(ctx context.Context, q sqlx.ExtContext, userID int64, day time.Time, act Activity) error {
	if act.WordsLearned < 0 || act.QuizzesTaken < 0 || act.TimeSpent < 0 {
		return ErrNegativeActivity
	}
	return t.streaks.Upsert(ctx, q, userID, day.UTC().Format(DateLayout),
		act.WordsLearned, act.QuizzesTaken, act.TimeSpent)
}

// Recompute walks the user's full activity history and persists the derived
// current/longest streak counters onto the user row. The current streak counts
// an unbroken run of days ending today; any gap breaks the chain. It runs
// eagerly after every streak-affecting event, never lazily. The read and the
// write run in one transaction holding the user row, so concurrent recomputes
// for the same user serialize instead of overwriting each other with a stale
// view.
func (t *Tracker) Recompute(ctx context.Context, userID int64) (current, longest int, err error) {
	tx, err := database.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := t.users.GetForUpdate(ctx, tx, userID); err != nil {
		return 0, 0, err
	}
	rows, err := t.streaks.ActiveForUser(ctx, tx, userID)
	if err != nil {
		return 0, 0, err
	}

	days := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		day, err := time.ParseInLocation(DateLayout, row.Date, time.UTC)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to parse streak date %q: %v", row.Date, err)
		}
		days = append(days, day)
	}

	// Rows arrive newest first. A row at distance d days from today extends
	// the current streak only if d equals the length counted so far.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, day := range days {
		dist := int(today.Sub(day).Hours() / 24)
		if dist != current {
			break
		}
		current++
	}

	// Longest unbroken run anywhere in the history, found in the same walk.
	run := 0
	for i, day := range days {
		if i == 0 || days[i-1].Sub(day) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	if err := t.users.UpdateStreaks(ctx, tx, userID, current, longest); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit streak recompute: %v", err)
	}
	return current, longest, nil
}
