package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/task-analytics-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the users with the given IDs
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListByDomain lists users whose email domain matches
func (r *GormUserRepository) ListByDomain(ctx context.Context, domain string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("domain = ?", strings.ToLower(domain)).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListAssigneesOfCreator lists users assigned to tasks created by creatorID
func (r *GormUserRepository) ListAssigneesOfCreator(ctx context.Context, creatorID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN task_assignments ON task_assignments.user_id = users.id AND task_assignments.deleted_at IS NULL").
		Joins("JOIN tasks ON tasks.id = task_assignments.task_id AND tasks.deleted_at IS NULL").
		Where("tasks.creator_id = ?", creatorID).
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
