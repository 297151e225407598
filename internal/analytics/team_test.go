package analytics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/models"
)

func rowWithScore(id uint64, score, onTime int) MemberProductivity {
	return MemberProductivity{UserID: id, Snapshot: Snapshot{Score: score, OnTimeRate: onTime}}
}

func TestSummarize_RanksByScore(t *testing.T) {
	report := Summarize([]MemberProductivity{
		rowWithScore(1, 90, 80),
		rowWithScore(2, 50, 40),
		rowWithScore(3, 70, 61),
	})

	require.Len(t, report.Members, 3)
	assert.Equal(t, []uint64{1, 3, 2}, []uint64{report.Members[0].UserID, report.Members[1].UserID, report.Members[2].UserID})
	assert.Equal(t, []int{1, 2, 3}, []int{report.Members[0].Rank, report.Members[1].Rank, report.Members[2].Rank})
	assert.Equal(t, 70, report.AvgProductivityScore)
	assert.Equal(t, 60, report.AvgOnTimeRate)
	assert.Equal(t, 3, report.MemberCount)
}

func TestSummarize_TiesKeepInputOrder(t *testing.T) {
	report := Summarize([]MemberProductivity{
		rowWithScore(4, 60, 0),
		rowWithScore(7, 60, 0),
		rowWithScore(5, 80, 0),
		rowWithScore(6, 60, 0),
	})

	ids := make([]uint64, 0, len(report.Members))
	for _, m := range report.Members {
		ids = append(ids, m.UserID)
	}
	assert.Equal(t, []uint64{5, 4, 7, 6}, ids)
}

func TestSummarize_Empty(t *testing.T) {
	report := Summarize(nil)

	assert.NotNil(t, report.Members)
	assert.Empty(t, report.Members)
	assert.Zero(t, report.AvgProductivityScore)
	assert.Zero(t, report.AvgOnTimeRate)
	assert.Zero(t, report.MemberCount)
}

func TestAggregate_ExcludesAdminsAndRanks(t *testing.T) {
	members := []models.User{
		{ID: 1, Name: "Owner", Role: models.RoleAdmin},
		{ID: 2, Name: "Idle", Role: models.RoleMember},
		{ID: 3, Name: "Busy", Role: models.RoleMember},
	}
	history := map[uint64][]models.Task{
		1: tenTaskHistory(),
		3: tenTaskHistory(),
	}

	var calls atomic.Int32
	lookup := TaskLookupFunc(func(_ context.Context, m models.User) ([]models.Task, error) {
		calls.Add(1)
		return history[m.ID], nil
	})

	report, err := NewTeamAggregator(clock.Fixed(scoreNow), 2).Aggregate(context.Background(), members, lookup, 30)
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls.Load())
	require.Len(t, report.Members, 2)
	assert.Equal(t, uint64(3), report.Members[0].UserID)
	assert.Equal(t, "Busy", report.Members[0].Name)
	assert.Equal(t, 73, report.Members[0].Snapshot.Score)
	assert.Equal(t, uint64(2), report.Members[1].UserID)
	assert.Zero(t, report.Members[1].Snapshot.Score)

	assert.Equal(t, 37, report.AvgProductivityScore)
	assert.Equal(t, 1, report.TotalOverdue)
	assert.Equal(t, 30, report.PeriodDays)
	assert.Equal(t, scoreNow, report.GeneratedAt)
}

func TestAggregate_NoMembers(t *testing.T) {
	lookup := TaskLookupFunc(func(context.Context, models.User) ([]models.Task, error) {
		t.Fatal("lookup must not be called")
		return nil, nil
	})

	report, err := NewTeamAggregator(clock.Fixed(scoreNow), 0).Aggregate(context.Background(), nil, lookup, 0)
	require.NoError(t, err)
	assert.Empty(t, report.Members)
	assert.Equal(t, 30, report.PeriodDays)
}

func TestAggregate_LookupErrorFails(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := TaskLookupFunc(func(_ context.Context, m models.User) ([]models.Task, error) {
		if m.ID == 2 {
			return nil, boom
		}
		return nil, nil
	})

	members := []models.User{{ID: 1, Role: models.RoleMember}, {ID: 2, Role: models.RoleMember}}
	_, err := NewTeamAggregator(clock.Fixed(scoreNow), 4).Aggregate(context.Background(), members, lookup, 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
