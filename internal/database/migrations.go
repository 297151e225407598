package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reminderIndexes back the queries issued by analytics and the reminder scan
var reminderIndexes = []struct {
	table   string
	name    string
	columns string
}{
	{"tasks", "idx_tasks_reminder_scan", "reminder_sent, status, due_date"},
	{"tasks", "idx_tasks_org_domain_status", "organization_domain, status"},
	{"tasks", "idx_tasks_updated_at", "updated_at"},
	{"task_assignments", "idx_task_assignments_user_task", "user_id, task_id"},
	{"notifications", "idx_notifications_user_read", "user_id, is_read"},
	{"users", "idx_users_domain_role", "domain, role"},
}

// AddIndexes creates composite indexes that AutoMigrate does not declare.
// Only PostgreSQL is inspected; other dialects rely on the model tags
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() != "postgres" {
		log.Debug("skipping composite indexes", zap.String("dialect", db.Dialector.Name()))
		return nil
	}

	for _, idx := range reminderIndexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}

// MigrateDatabase runs AutoMigrate followed by index creation
func MigrateDatabase(db *gorm.DB, log *zap.Logger) error {
	if err := Migrate(db, log); err != nil {
		return err
	}
	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	return nil
}
