package analytics

import (
	"time"

	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/constants"
	"github.com/yukikurage/task-analytics-api/internal/models"
)

// ComputeStreak counts consecutive calendar days, ending on asOf's day, on
// which at least one task was completed. Day boundaries use asOf's location
// and a completion is dated by the task's UpdatedAt. The walk stops at the
// first day without a completion, or after constants.StreakMaxDays days.
func ComputeStreak(tasks []models.Task, asOf time.Time) int {
	if len(tasks) == 0 {
		return 0
	}

	loc := asOf.Location()
	completedDays := make(map[time.Time]struct{})
	for _, t := range tasks {
		if !t.IsCompleted() {
			continue
		}
		completedDays[clock.StartOfDay(t.UpdatedAt.In(loc))] = struct{}{}
	}
	if len(completedDays) == 0 {
		return 0
	}

	day := clock.StartOfDay(asOf)
	streak := 0
	for i := 0; i < constants.StreakMaxDays; i++ {
		if _, ok := completedDays[day]; !ok {
			break
		}
		streak++
		// AddDate keeps midnight across DST transitions, unlike Add(-24h).
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
