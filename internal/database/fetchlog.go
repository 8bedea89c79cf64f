package database

import (
	"gorm.io/gorm"
)

// RecordFetch appends one attempt to the fetch log
func RecordFetch(db *gorm.DB, entry *FetchLog) error {
	return db.Create(entry).Error
}

// RecentFetches returns the newest attempts first
func RecentFetches(db *gorm.DB, limit int) ([]FetchLog, error) {
	var logs []FetchLog
	err := db.Order("fetch_time DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// LatestFetch returns the newest attempt for a case
func LatestFetch(db *gorm.DB, caseID string) (*FetchLog, error) {
	var entry FetchLog
	if err := db.Where("case_id = ?", caseID).Order("fetch_time DESC").Order("id DESC").First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
