package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/task-analytics-api/internal/analytics"
	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/repository"
)

// AnalyticsService serves productivity snapshots and team reports. Nothing
// it computes is stored
type AnalyticsService struct {
	taskRepo      repository.TaskRepository
	orgService    *OrganizationService
	scorer        *analytics.Scorer
	team          *analytics.TeamAggregator
	defaultPeriod int
}

// NewAnalyticsService creates a new AnalyticsService. defaultPeriod is used
// when a caller does not ask for a period
func NewAnalyticsService(
	taskRepo repository.TaskRepository,
	orgService *OrganizationService,
	c clock.Clock,
	defaultPeriod int,
) *AnalyticsService {
	return &AnalyticsService{
		taskRepo:      taskRepo,
		orgService:    orgService,
		scorer:        analytics.NewScorer(c),
		team:          analytics.NewTeamAggregator(c, 0),
		defaultPeriod: analytics.NormalizePeriod(defaultPeriod),
	}
}

func (s *AnalyticsService) period(requested int) int {
	if requested <= 0 {
		return s.defaultPeriod
	}
	return analytics.NormalizePeriod(requested)
}

// GetProductivityStats scores every task assigned to the user. An unknown
// user has no tasks and gets a zero snapshot
func (s *AnalyticsService) GetProductivityStats(ctx context.Context, userID uint64, periodDays int) (*analytics.Snapshot, error) {
	tasks, err := s.taskRepo.FindByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	snapshot := s.scorer.Score(tasks, s.period(periodDays))
	return &snapshot, nil
}

// GetTeamProductivityStats ranks the admin's team. Members are scored on the
// tasks of the admin's organization, or on tasks the admin created when the
// admin has no organization
func (s *AnalyticsService) GetTeamProductivityStats(ctx context.Context, admin models.User, periodDays int) (*analytics.TeamReport, error) {
	if !admin.IsAdmin() {
		return nil, ErrAdminRequired
	}

	members, err := s.orgService.TeamMembers(ctx, admin)
	if err != nil {
		return nil, err
	}

	lookup := analytics.TaskLookupFunc(func(ctx context.Context, member models.User) ([]models.Task, error) {
		if s.orgService.HasOrganization(admin) {
			return s.taskRepo.FindByAssigneeInDomain(ctx, member.ID, admin.Domain)
		}
		return s.taskRepo.FindByAssigneeAndCreator(ctx, member.ID, admin.ID)
	})

	report, err := s.team.Aggregate(ctx, members, lookup, s.period(periodDays))
	if err != nil {
		return nil, fmt.Errorf("failed to build team report: %w", err)
	}
	return report, nil
}
