package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/models"
	"golang.org/x/sync/errgroup"
)

const defaultAggregateConcurrency = 8

// TaskLookup loads the tasks that count toward a member's productivity.
type TaskLookup interface {
	TasksForMember(ctx context.Context, member models.User) ([]models.Task, error)
}

// TaskLookupFunc adapts a function to TaskLookup.
type TaskLookupFunc func(ctx context.Context, member models.User) ([]models.Task, error)

// TasksForMember implements TaskLookup.
func (f TaskLookupFunc) TasksForMember(ctx context.Context, member models.User) ([]models.Task, error) {
	return f(ctx, member)
}

// MemberProductivity is one ranked row of a team report.
type MemberProductivity struct {
	Rank     int      `json:"rank"`
	UserID   uint64   `json:"user_id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Snapshot Snapshot `json:"stats"`
}

// TeamReport ranks members by productivity score and summarizes the team.
type TeamReport struct {
	Members                []MemberProductivity `json:"members"`
	MemberCount            int                  `json:"member_count"`
	AvgProductivityScore   int                  `json:"avg_productivity_score"`
	AvgOnTimeRate          int                  `json:"avg_on_time_rate"`
	TotalCompletedInPeriod int                  `json:"total_completed_in_period"`
	TotalOverdue           int                  `json:"total_overdue"`
	PeriodDays             int                  `json:"period_days"`
	GeneratedAt            time.Time            `json:"generated_at"`
}

// TeamAggregator scores every member and builds a TeamReport.
type TeamAggregator struct {
	clock       clock.Clock
	concurrency int
}

// NewTeamAggregator creates a TeamAggregator. concurrency bounds how many
// members are scored at once; non-positive values use a default.
func NewTeamAggregator(c clock.Clock, concurrency int) *TeamAggregator {
	if c == nil {
		c = clock.System(nil)
	}
	if concurrency <= 0 {
		concurrency = defaultAggregateConcurrency
	}
	return &TeamAggregator{clock: c, concurrency: concurrency}
}

// Aggregate scores each non-admin member over the tasks returned by lookup.
// All members are scored against the same instant. Members are ordered by
// descending score; ties keep their input order.
func (a *TeamAggregator) Aggregate(ctx context.Context, members []models.User, lookup TaskLookup, periodDays int) (*TeamReport, error) {
	now := a.clock.Now()
	periodDays = NormalizePeriod(periodDays)

	scored := make([]models.User, 0, len(members))
	for _, m := range members {
		if m.IsAdmin() {
			continue
		}
		scored = append(scored, m)
	}

	rows := make([]MemberProductivity, len(scored))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, member := range scored {
		g.Go(func() error {
			tasks, err := lookup.TasksForMember(gctx, member)
			if err != nil {
				return fmt.Errorf("failed to load tasks for user %d: %w", member.ID, err)
			}
			rows[i] = MemberProductivity{
				UserID:   member.ID,
				Name:     member.Name,
				Email:    member.Email,
				Snapshot: ScoreAt(tasks, periodDays, now),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := Summarize(rows)
	report.PeriodDays = periodDays
	report.GeneratedAt = now
	return report, nil
}

// Summarize ranks rows by descending score (stable) and computes team totals.
func Summarize(rows []MemberProductivity) *TeamReport {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Snapshot.Score > rows[j].Snapshot.Score
	})

	report := &TeamReport{
		Members:     rows,
		MemberCount: len(rows),
	}
	if len(rows) == 0 {
		report.Members = []MemberProductivity{}
		return report
	}

	var scoreSum, onTimeSum int
	for i := range rows {
		rows[i].Rank = i + 1
		s := rows[i].Snapshot
		scoreSum += s.Score
		onTimeSum += s.OnTimeRate
		report.TotalCompletedInPeriod += s.CompletedInPeriod
		report.TotalOverdue += s.OverdueTasks
	}

	n := float64(len(rows))
	report.AvgProductivityScore = int(math.Round(float64(scoreSum) / n))
	report.AvgOnTimeRate = int(math.Round(float64(onTimeSum) / n))
	return report
}
