// Package sqlite is the local persistence backend selected with
// STORE_BACKEND=sqlite. It mirrors the Feishu tables as GORM models.
package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens (or creates) the database file and applies PRAGMAs. DSNs
// starting with "file:" are passed through untouched.
func Open(path string) (*gorm.DB, error) {
	if !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&requestRow{}, &guideRow{}, &userRow{})
}

type requestRow struct {
	RecordID    string `gorm:"primaryKey"`
	RequestID   string `gorm:"uniqueIndex"`
	Destination string
	Origin      string
	StartDate   string
	EndDate     string
	Budget      float64
	Preferences string
	CreatedAt   time.Time `gorm:"index"`
}

func (requestRow) TableName() string { return "trip_requests" }

type guideRow struct {
	RecordID     string `gorm:"primaryKey"`
	GuideID      string `gorm:"uniqueIndex"`
	RequestID    string `gorm:"index"`
	Destination  string
	WeatherInfo  string
	GuideContent string
	CreatedAt    time.Time `gorm:"index"`
}

func (guideRow) TableName() string { return "trip_guides" }

type userRow struct {
	RecordID  string `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex"`
	Password  string
	Status    string
	Role      string
	CreatedAt time.Time
}

func (userRow) TableName() string { return "users" }
