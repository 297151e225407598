package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/models"
)

var scoreNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func day(d, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func checklist(total, done int) []models.ChecklistItem {
	items := make([]models.ChecklistItem, total)
	for i := range items {
		items[i] = models.ChecklistItem{Text: "step", Completed: i < done}
	}
	return items
}

// tenTaskHistory has 10 tasks, 6 completed (5 on time), 15 of 20 checklist
// items done and completions on the last three days.
func tenTaskHistory() []models.Task {
	done := func(updated time.Time, due time.Time) models.Task {
		return models.Task{
			Status:    models.TaskStatusCompleted,
			Priority:  models.TaskPriorityMedium,
			DueDate:   ptr(due),
			CreatedAt: day(1, 8),
			UpdatedAt: updated,
		}
	}

	c1 := done(day(10, 10), day(11, 0))
	c1.TodoChecklist = checklist(10, 8)
	tasks := []models.Task{
		c1,
		done(day(9, 10), day(9, 12)),
		done(day(8, 10), day(8, 10)),
		done(day(5, 10), day(6, 0)),
		done(day(1, 10), day(2, 0)),
		done(day(4, 10), day(3, 0)),
		{Status: models.TaskStatusPending, Priority: models.TaskPriorityHigh, DueDate: ptr(day(9, 0)), CreatedAt: day(2, 8), UpdatedAt: day(2, 8)},
		{Status: models.TaskStatusInProgress, Priority: models.TaskPriorityLow, DueDate: ptr(day(20, 0)), CreatedAt: day(3, 8), UpdatedAt: day(3, 8), TodoChecklist: checklist(10, 7)},
		{Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium, CreatedAt: day(4, 8), UpdatedAt: day(4, 8)},
		{Status: models.TaskStatusPending, Priority: models.TaskPriorityMedium, CreatedAt: day(4, 9), UpdatedAt: day(4, 9)},
	}
	return tasks
}

func TestScore_WorkedExample(t *testing.T) {
	snap := NewScorer(clock.Fixed(scoreNow)).Score(tenTaskHistory(), 30)

	assert.Equal(t, 10, snap.TotalTasks)
	assert.Equal(t, 6, snap.CompletedTasks)
	assert.Equal(t, 5, snap.OnTimeCompletions)
	assert.Equal(t, 83, snap.OnTimeRate)
	assert.Equal(t, 60, snap.CompletionRate)
	assert.Equal(t, 75, snap.ChecklistRate)
	assert.Equal(t, 3, snap.CurrentStreak)
	assert.Equal(t, 1, snap.OverdueTasks)

	assert.InDelta(t, 20.0, snap.Breakdown.Volume, 1e-9)
	assert.InDelta(t, 15.0, snap.Breakdown.Completion, 1e-9)
	assert.InDelta(t, 20.75, snap.Breakdown.OnTime, 1e-9)
	assert.InDelta(t, 6.4286, snap.Breakdown.Streak, 1e-4)
	assert.InDelta(t, 11.25, snap.Breakdown.Checklist, 1e-9)
	assert.Equal(t, 73, snap.Score)

	assert.Equal(t, StatusCounts{Pending: 3, InProgress: 1, Completed: 6}, snap.Status)
	assert.Equal(t, PriorityCounts{Low: 1, Medium: 8, High: 1}, snap.Priority)
}

func TestScore_EmptyHistoryIsAllZero(t *testing.T) {
	snap := ScoreAt(nil, 30, scoreNow)

	assert.Zero(t, snap.Score)
	assert.Zero(t, snap.OnTimeRate)
	assert.Zero(t, snap.ChecklistRate)
	assert.Zero(t, snap.CompletionRate)
	assert.Zero(t, snap.CurrentStreak)
	assert.Zero(t, snap.CompletedInPeriod)
	assert.Len(t, snap.WeeklyTrend, 5)
	for _, b := range snap.WeeklyTrend {
		assert.Zero(t, b.Completed)
		assert.Zero(t, b.Created)
	}
}

func TestScore_IsBoundedInteger(t *testing.T) {
	var perfect []models.Task
	for i := 0; i < 50; i++ {
		updated := scoreNow.AddDate(0, 0, -(i % 20))
		perfect = append(perfect, models.Task{
			Status:        models.TaskStatusCompleted,
			DueDate:       ptr(updated.Add(time.Hour)),
			CreatedAt:     updated.Add(-time.Hour),
			UpdatedAt:     updated,
			TodoChecklist: checklist(4, 4),
		})
	}

	histories := [][]models.Task{
		nil,
		perfect,
		tenTaskHistory(),
		{{Status: models.TaskStatusPending, DueDate: ptr(scoreNow.Add(-time.Hour))}},
	}
	for _, tasks := range histories {
		snap := ScoreAt(tasks, 30, scoreNow)
		assert.GreaterOrEqual(t, snap.Score, 0)
		assert.LessOrEqual(t, snap.Score, 100)
	}

	assert.Equal(t, 100, ScoreAt(perfect, 30, scoreNow).Score)
}

func TestScore_OnTimeCompletionNeverLowersOnTimeWeight(t *testing.T) {
	base := []models.Task{
		{Status: models.TaskStatusCompleted, DueDate: ptr(day(9, 12)), UpdatedAt: day(9, 10)},
		{Status: models.TaskStatusCompleted, DueDate: ptr(day(8, 0)), UpdatedAt: day(8, 10)},
		{Status: models.TaskStatusPending},
	}
	before := ScoreAt(base, 30, scoreNow)

	extra := append(append([]models.Task{}, base...), models.Task{
		Status: models.TaskStatusCompleted, DueDate: ptr(day(10, 12)), UpdatedAt: day(10, 9),
	})
	after := ScoreAt(extra, 30, scoreNow)

	assert.GreaterOrEqual(t, after.Breakdown.OnTime, before.Breakdown.OnTime)
	assert.GreaterOrEqual(t, after.OnTimeRate, before.OnTimeRate)
}

func TestScore_CompletionWithoutDueDateIsNotOnTime(t *testing.T) {
	snap := ScoreAt([]models.Task{{Status: models.TaskStatusCompleted, UpdatedAt: day(10, 9)}}, 30, scoreNow)
	assert.Equal(t, 1, snap.CompletedTasks)
	assert.Zero(t, snap.OnTimeRate)
}

func TestScore_PeriodCounts(t *testing.T) {
	tasks := []models.Task{
		{Status: models.TaskStatusCompleted, CreatedAt: day(1, 9), UpdatedAt: day(2, 9)},
		{Status: models.TaskStatusCompleted, CreatedAt: scoreNow.AddDate(0, 0, -40), UpdatedAt: scoreNow.AddDate(0, 0, -35)},
		{Status: models.TaskStatusPending, CreatedAt: day(9, 9), UpdatedAt: day(9, 9)},
	}

	snap := ScoreAt(tasks, 30, scoreNow)
	assert.Equal(t, 1, snap.CompletedInPeriod)
	assert.Equal(t, 2, snap.CreatedInPeriod)
	assert.Equal(t, scoreNow.AddDate(0, 0, -30), snap.PeriodStart)
	assert.Equal(t, scoreNow, snap.PeriodEnd)
}

func TestScore_WeeklyTrendOldestFirst(t *testing.T) {
	tasks := []models.Task{
		{Status: models.TaskStatusCompleted, CreatedAt: day(1, 9), UpdatedAt: day(1, 9)},
		{Status: models.TaskStatusCompleted, CreatedAt: day(9, 9), UpdatedAt: day(10, 10)},
		{Status: models.TaskStatusPending, CreatedAt: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
		{Status: models.TaskStatusPending, CreatedAt: scoreNow},
	}

	snap := ScoreAt(tasks, 14, scoreNow)
	require.Len(t, snap.WeeklyTrend, 2)

	first, second := snap.WeeklyTrend[0], snap.WeeklyTrend[1]
	assert.Equal(t, scoreNow.AddDate(0, 0, -14), first.Start)
	assert.Equal(t, scoreNow.AddDate(0, 0, -7), first.End)
	assert.Equal(t, scoreNow, second.End)

	assert.Equal(t, 1, first.Completed)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 1, second.Completed)
	assert.Equal(t, 2, second.Created, "creation at the period end is counted")
}

func TestScore_PartialFinalBucket(t *testing.T) {
	snap := ScoreAt(nil, 10, scoreNow)
	require.Len(t, snap.WeeklyTrend, 2)
	assert.Equal(t, scoreNow, snap.WeeklyTrend[1].End)
	assert.Equal(t, scoreNow.AddDate(0, 0, -3), snap.WeeklyTrend[1].Start)
}

func TestNormalizePeriod(t *testing.T) {
	assert.Equal(t, 30, NormalizePeriod(0))
	assert.Equal(t, 30, NormalizePeriod(-7))
	assert.Equal(t, 7, NormalizePeriod(7))
	assert.Equal(t, 365, NormalizePeriod(1000))
}
