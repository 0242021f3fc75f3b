package database

import (
	"fmt"

	applog "github.com/yukikurage/taskmanager-api/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table  string
		name   string
		column string
	}{
		// Task indexes for filtering and sorting
		{"tasks", "idx_tasks_assigned_to_id", "assigned_to_id"},
		{"tasks", "idx_tasks_assigned_by_id", "assigned_by_id"},
		{"tasks", "idx_tasks_parent_task_id", "parent_task_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Extension request indexes
		{"extension_requests", "idx_extension_requests_new_deadline", "new_deadline"},
		{"extension_requests", "idx_extension_requests_request_by_id", "request_by_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		// Check if index already exists
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		err := db.Exec("CREATE INDEX ? ON ? (?)",
			clause.Column{Name: idx.name},
			clause.Table{Name: idx.table},
			clause.Column{Name: idx.column},
		).Error
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		applog.Info("Created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("column", idx.column),
		)
	}

	return nil
}
