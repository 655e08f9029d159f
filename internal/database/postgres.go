package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectPostgres establishes a connection to the PostgreSQL database using the provided DSN.
func ConnectPostgres(dsn string, logger zerolog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite opens a file backed database for single-user installs.
func ConnectSQLite(path string, logger zerolog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: NewGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return db, nil
}

// Connect picks postgres when a DSN is configured and falls back to the sqlite file otherwise.
func Connect(databaseURL, sqlitePath string, logger zerolog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return ConnectPostgres(databaseURL, logger)
	}
	return ConnectSQLite(sqlitePath, logger)
}

// NewGormLogger routes GORM warnings through zerolog. A missing row is an expected lookup result, not an error.
func NewGormLogger(logger zerolog.Logger) gormlogger.Interface {
	component := logger.With().Str("component", "gorm").Logger()
	return gormlogger.New(&component, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
