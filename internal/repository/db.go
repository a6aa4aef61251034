package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// InitDB opens the telemetry database and runs migrations.
// Parameters:
//   - cfg: driver and connection settings.
//   - log: receives gorm warnings and slow queries; nil uses the default logger.
//
// Returns:
//   - *gorm.DB: initialized database handle.
//   - error: non-nil if the driver is unknown or connection or migration fails.
func InitDB(cfg *config.DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logger.GetDefault()
	}
	log = log.WithFields(logger.Fields{logger.FieldComponent: "database", "driver": cfg.Driver})

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if isSQLite(cfg.Driver) {
		// WAL lets the telemetry writer and readers proceed concurrently
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			log.WithError(err).Warn("Failed to enable WAL")
		}
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&domain.LoadAttempt{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.WithField("auto_migrate", cfg.AutoMigrate).Info("Database initialized")
	return db, nil
}

func isSQLite(driver string) bool {
	return driver == "" || driver == "sqlite"
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch {
	case cfg.Driver == "postgres":
		// Simple protocol keeps transaction poolers (pgbouncer, port 6543) working
		return postgres.New(postgres.Config{DSN: cfg.DSN(), PreferSimpleProtocol: true}), nil
	case isSQLite(cfg.Driver):
		if cfg.Path != "" && cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
