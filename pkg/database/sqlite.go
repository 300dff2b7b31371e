package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"remindkit/pkg/config"
)

// NewSQLiteConnection opens the embedded local-first database
func NewSQLiteConnection(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
