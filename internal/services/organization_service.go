package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/repository"
	"github.com/yukikurage/task-analytics-api/internal/utils"
)

// OrganizationService resolves organization membership. An organization is
// the set of users sharing a non-public email domain. Users on public mail
// providers have no organization; an admin on such a domain reports on the
// users assigned to tasks they created, excluding public-domain users
type OrganizationService struct {
	userRepo repository.UserRepository
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(userRepo repository.UserRepository) *OrganizationService {
	return &OrganizationService{
		userRepo: userRepo,
	}
}

// HasOrganization reports whether the user's domain forms an organization
func (s *OrganizationService) HasOrganization(user models.User) bool {
	return user.Domain != "" && !utils.IsPublicDomain(user.Domain)
}

// SameOrganization reports whether both users belong to one organization
func (s *OrganizationService) SameOrganization(a, b models.User) bool {
	return s.HasOrganization(a) && a.Domain == b.Domain
}

// TeamMembers returns the users an admin reports on, ordered by ID
func (s *OrganizationService) TeamMembers(ctx context.Context, admin models.User) ([]models.User, error) {
	if s.HasOrganization(admin) {
		members, err := s.userRepo.ListByDomain(ctx, admin.Domain)
		if err != nil {
			return nil, fmt.Errorf("failed to list organization members: %w", err)
		}
		return members, nil
	}

	assignees, err := s.userRepo.ListAssigneesOfCreator(ctx, admin.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}

	members := make([]models.User, 0, len(assignees))
	for _, u := range assignees {
		if utils.IsPublicDomain(u.Domain) {
			continue
		}
		members = append(members, u)
	}
	return members, nil
}

// CanAccessTask reports whether user may view task: its creator, an
// assignee, or an admin of the task's organization
func (s *OrganizationService) CanAccessTask(user models.User, task models.Task) bool {
	if task.CreatorID == user.ID || isAssignee(task, user.ID) {
		return true
	}
	return user.IsAdmin() && s.HasOrganization(user) && task.OrganizationDomain == user.Domain
}

// CanManageTask reports whether user may edit every field of task and
// change its assignees
func (s *OrganizationService) CanManageTask(user models.User, task models.Task) bool {
	if !user.IsAdmin() {
		return false
	}
	if task.CreatorID == user.ID {
		return true
	}
	return s.HasOrganization(user) && task.OrganizationDomain == user.Domain
}

func isAssignee(task models.Task, userID uint64) bool {
	for _, a := range task.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
