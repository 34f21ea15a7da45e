package progress

import "github.com/example/ordbok/pkg/models"

// Repetition interval bounds per mastery tier, in days.
const (
	maxMasteredInterval   = 30
	maxPracticingInterval = 14
	maxLearningInterval   = 7
)

// applyTierPolicy recomputes the mastery level and repetition interval from
// the attempt counters. Tiers are evaluated in fixed priority order; the first
// match wins. Must be called after the attempt counters have been updated.
func applyTierPolicy(rec *models.WordProgress, isCorrect bool) {
	successRate := float64(rec.CorrectAttempts) / float64(rec.TotalAttempts)

	switch {
	case rec.TotalAttempts >= 10 && successRate >= 0.9:
		rec.MasteryLevel = models.MasteryMastered
		rec.RepetitionInterval *= 2
		if rec.RepetitionInterval > maxMasteredInterval {
			rec.RepetitionInterval = maxMasteredInterval
		}
	case rec.TotalAttempts >= 5 && successRate >= 0.7:
		rec.MasteryLevel = models.MasteryPracticing
		rec.RepetitionInterval = int(float64(rec.RepetitionInterval) * 1.5)
		if rec.RepetitionInterval > maxPracticingInterval {
			rec.RepetitionInterval = maxPracticingInterval
		}
	default:
		rec.MasteryLevel = models.MasteryLearning
		if isCorrect {
			rec.RepetitionInterval++
			if rec.RepetitionInterval > maxLearningInterval {
				rec.RepetitionInterval = maxLearningInterval
			}
		} else {
			rec.RepetitionInterval--
			if rec.RepetitionInterval < 1 {
				rec.RepetitionInterval = 1
			}
		}
	}
}
