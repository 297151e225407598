package dto

import "github.com/yukikurage/task-analytics-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID     uint64          `json:"id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Domain string          `json:"domain,omitempty"`
	Role   models.UserRole `json:"role,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Domain: user.Domain,
		Role:   user.Role,
	}
}

// ToUserSummaryDTO converts a User model to a UserDTO without role or domain
func ToUserSummaryDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
