package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/tcg-inventory-sync/internal/models"
)

// Open connects to the configured store and brings the schema up to date.
// driver is "sqlite" or "postgres"; logLevel is one of silent, error, warn, info.
func Open(driver, dsn, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.New(postgres.Config{DSN: dsn})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY
		// and keeps shared-cache in-memory databases alive between calls.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("database connected", zap.String("driver", driver))

	if err := cleanupDuplicateCatalogEntries(db, log); err != nil {
		return nil, fmt.Errorf("cleanup catalog duplicates: %w", err)
	}

	err = db.AutoMigrate(
		&models.CatalogEntry{},
		&models.HoldingRecord{},
		&models.Snapshot{},
		&models.ChangeRecord{},
		&models.UploadJob{},
	)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db, log); err != nil {
		return nil, err
	}

	log.Info("database migration completed")
	return db, nil
}

// newGormLogger sends gorm's SQL traces and slow-query warnings to the
// process logger under the "gorm" name.
func newGormLogger(log *zap.Logger, level string) logger.Interface {
	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogLevel(level),
		IgnoreRecordNotFoundError: true,
	})
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
