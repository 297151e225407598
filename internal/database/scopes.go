package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/task-analytics-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// AssignedTo restricts a task query to tasks with a live assignment for userID
func AssignedTo(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("EXISTS (?)", db.Session(&gorm.Session{NewDB: true}).
			Table("task_assignments").
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", userID).
			Where("task_assignments.deleted_at IS NULL"))
	}
}
