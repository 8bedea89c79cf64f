package database

import (
	"fmt"

	"gorm.io/gorm"
)

var fetchLogIndexes = []struct {
	name    string
	columns string
}{
	// latest attempt per case
	{"idx_fetch_logs_case_time", "case_id, fetch_time"},
	{"idx_fetch_logs_time", "fetch_time"},
}

// RunMigrations creates the indexes AutoMigrate does not
func RunMigrations(db *gorm.DB) error {
	for _, idx := range fetchLogIndexes {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON fetch_logs(%s)", idx.name, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
