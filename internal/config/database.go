package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"visit_tracker/internal/models"
)

// OpenDB connects to the configured database and migrates the schema.
func OpenDB(s Settings) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch s.DBDriver {
	case "postgres":
		// Build Data Source Name
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode, s.DBTimezone,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(s.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if s.DBDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite only supports one writer at a time
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	if err := db.AutoMigrate(&models.Driver{}, &models.Admin{}, &models.VisitEvent{}); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}
	return db, nil
}
