package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"assignments", "idx_assignments_operator_status", "operator_id, status"},
		{"assignments", "idx_assignments_post_status", "post_id, status"},
		{"assignments", "idx_assignments_supersedes_id", "supersedes_id"},
		{"allowances", "idx_allowances_assignment_id", "assignment_id"},
		{"posts", "idx_posts_location_id", "location_id"},
	}

	for _, idx := range indexes {
		if indexExists(db, idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	// On postgres, back the one-live-assignment rule with a partial unique
	// index. The guarded insert remains authoritative; this catches anything
	// that slips past it and surfaces as a conflict.
	if db.Dialector.Name() == "postgres" && !indexExists(db, "assignments", "idx_assignments_operator_live") {
		sql := `CREATE UNIQUE INDEX idx_assignments_operator_live
			ON assignments (operator_id)
			WHERE status IN ('PENDING', 'ACTIVE')`
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index idx_assignments_operator_live: %w", err)
		}
	}

	return nil
}

func indexExists(db *gorm.DB, table, name string) bool {
	var count int64

	switch db.Dialector.Name() {
	case "postgres":
		db.Raw(`SELECT COUNT(*) FROM pg_indexes WHERE tablename = ? AND indexname = ?`, table, name).Count(&count)
	case "mysql":
		db.Raw(`SELECT COUNT(*) FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`, table, name).Count(&count)
	default:
		return false
	}

	return count > 0
}
