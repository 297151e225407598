package analytics

import (
	"math"
	"time"

	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/constants"
	"github.com/yukikurage/task-analytics-api/internal/models"
)

// Score weights. Volume saturates at volumeTarget tasks and streak at
// streakTarget days so neither can dominate the composite.
const (
	volumeWeight     = 20.0
	completionWeight = 25.0
	onTimeWeight     = 0.25
	streakWeight     = 15.0
	checklistWeight  = 0.15

	volumeTarget = 10.0
	streakTarget = 7.0
)

// ScoreBreakdown holds each weighted component of the composite score.
type ScoreBreakdown struct {
	Volume     float64 `json:"volume"`
	Completion float64 `json:"completion"`
	OnTime     float64 `json:"on_time"`
	Streak     float64 `json:"streak"`
	Checklist  float64 `json:"checklist"`
}

// Total is the unclamped sum of the components.
func (b ScoreBreakdown) Total() float64 {
	return b.Volume + b.Completion + b.OnTime + b.Streak + b.Checklist
}

// StatusCounts breaks tasks down by status.
type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// PriorityCounts breaks tasks down by priority.
type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// TrendBucket counts activity in one week of the reporting period.
type TrendBucket struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Completed int       `json:"completed"`
	Created   int       `json:"created"`
}

// Snapshot is a user's productivity for one reporting period. It is derived
// from task data on every request and never stored.
type Snapshot struct {
	Score          int `json:"productivity_score"`
	OnTimeRate     int `json:"on_time_rate"`
	CompletionRate int `json:"completion_rate"`
	ChecklistRate  int `json:"checklist_rate"`
	CurrentStreak  int `json:"current_streak"`

	TotalTasks        int `json:"total_tasks"`
	CompletedTasks    int `json:"completed_tasks"`
	OnTimeCompletions int `json:"on_time_completions"`
	OverdueTasks      int `json:"overdue_tasks"`
	ChecklistItems    int `json:"checklist_items"`
	ChecklistDone     int `json:"checklist_completed"`

	CompletedInPeriod int `json:"completed_in_period"`
	CreatedInPeriod   int `json:"created_in_period"`

	Status      StatusCounts   `json:"status"`
	Priority    PriorityCounts `json:"priority"`
	Breakdown   ScoreBreakdown `json:"score_breakdown"`
	WeeklyTrend []TrendBucket  `json:"weekly_trend"`

	PeriodDays  int       `json:"period_days"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// Scorer computes productivity snapshots against an injected clock.
type Scorer struct {
	clock clock.Clock
}

// NewScorer creates a Scorer. A nil clock reads the system clock.
func NewScorer(c clock.Clock) *Scorer {
	if c == nil {
		c = clock.System(nil)
	}
	return &Scorer{clock: c}
}

// Score computes the snapshot of tasks for the last periodDays days.
func (s *Scorer) Score(tasks []models.Task, periodDays int) Snapshot {
	return ScoreAt(tasks, periodDays, s.clock.Now())
}

// ScoreAt computes the snapshot of tasks as seen at now.
func ScoreAt(tasks []models.Task, periodDays int, now time.Time) Snapshot {
	periodDays = NormalizePeriod(periodDays)
	periodStart := now.AddDate(0, 0, -periodDays)

	snap := Snapshot{
		TotalTasks:  len(tasks),
		PeriodDays:  periodDays,
		PeriodStart: periodStart,
		PeriodEnd:   now,
	}

	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusCompleted:
			snap.Status.Completed++
		case models.TaskStatusInProgress:
			snap.Status.InProgress++
		default:
			snap.Status.Pending++
		}

		switch t.Priority {
		case models.TaskPriorityLow:
			snap.Priority.Low++
		case models.TaskPriorityHigh:
			snap.Priority.High++
		default:
			snap.Priority.Medium++
		}

		if t.IsCompleted() {
			snap.CompletedTasks++
			if t.DueDate != nil && !t.UpdatedAt.After(*t.DueDate) {
				snap.OnTimeCompletions++
			}
			if withinPeriod(t.UpdatedAt, periodStart, now) {
				snap.CompletedInPeriod++
			}
		} else if t.DueDate != nil && t.DueDate.Before(now) {
			snap.OverdueTasks++
		}

		if withinPeriod(t.CreatedAt, periodStart, now) {
			snap.CreatedInPeriod++
		}

		for _, item := range t.TodoChecklist {
			snap.ChecklistItems++
			if item.Completed {
				snap.ChecklistDone++
			}
		}
	}

	snap.OnTimeRate = percent(snap.OnTimeCompletions, snap.CompletedTasks)
	snap.CompletionRate = percent(snap.CompletedTasks, snap.TotalTasks)
	snap.ChecklistRate = percent(snap.ChecklistDone, snap.ChecklistItems)
	snap.CurrentStreak = ComputeStreak(tasks, now)
	snap.Breakdown = breakdown(snap.TotalTasks, snap.CompletedTasks, snap.OnTimeRate, snap.CurrentStreak, snap.ChecklistRate)
	snap.Score = compositeScore(snap.Breakdown)
	snap.WeeklyTrend = weeklyTrend(tasks, periodStart, now)

	return snap
}

// NormalizePeriod clamps a requested period to [1, MaxPeriodDays], using the
// default period for non-positive values.
func NormalizePeriod(periodDays int) int {
	switch {
	case periodDays <= 0:
		return constants.DefaultPeriodDays
	case periodDays > constants.MaxPeriodDays:
		return constants.MaxPeriodDays
	}
	return periodDays
}

func breakdown(taskCount, completed, onTimeRate, streak, checklistRate int) ScoreBreakdown {
	return ScoreBreakdown{
		Volume:     math.Min(float64(taskCount)/volumeTarget, 1) * volumeWeight,
		Completion: float64(completed) / math.Max(float64(taskCount), 1) * completionWeight,
		OnTime:     float64(onTimeRate) * onTimeWeight,
		Streak:     math.Min(float64(streak)/streakTarget, 1) * streakWeight,
		Checklist:  float64(checklistRate) * checklistWeight,
	}
}

func compositeScore(b ScoreBreakdown) int {
	total := math.Min(b.Total(), 100)
	if total < 0 {
		total = 0
	}
	return int(math.Round(total))
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

func withinPeriod(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// weeklyTrend splits [start, end] into consecutive 7-day buckets, oldest
// first. The last bucket is truncated at end and includes it.
func weeklyTrend(tasks []models.Task, start, end time.Time) []TrendBucket {
	var buckets []TrendBucket
	for from := start; from.Before(end); from = from.AddDate(0, 0, constants.TrendBucketDays) {
		to := from.AddDate(0, 0, constants.TrendBucketDays)
		if to.After(end) {
			to = end
		}
		buckets = append(buckets, TrendBucket{Start: from, End: to})
	}

	last := len(buckets) - 1
	inBucket := func(i int, t time.Time) bool {
		b := buckets[i]
		if t.Before(b.Start) {
			return false
		}
		if i == last {
			return !t.After(b.End)
		}
		return t.Before(b.End)
	}

	for _, t := range tasks {
		for i := range buckets {
			if t.IsCompleted() && inBucket(i, t.UpdatedAt) {
				buckets[i].Completed++
			}
			if inBucket(i, t.CreatedAt) {
				buckets[i].Created++
			}
		}
	}
	return buckets
}
