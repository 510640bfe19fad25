package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/logger"
)

// ErrNotFound is returned when a service or application id is unknown.
var ErrNotFound = errors.New("store: not found")

// Open connects to the configured database and runs migrations when asked.
func Open(cfg config.DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	log.Info("Connecting to database...", "driver", cfg.Driver)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Error("Failed to connect to database", "driver", cfg.Driver, "error", err)
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("store: sqlite handle: %w", err)
		}
		// sqlite serialises writers; a single connection also keeps
		// in-memory databases shared across queries.
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			log.Error("Auto migration failed", "error", err)
			return nil, err
		}
		log.Info("Database migrated")
	}
	return db, nil
}

// AutoMigrate creates or updates the tables used by the repositories.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ServiceRow{}, &ApplicationRow{}, &VersionRow{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}
