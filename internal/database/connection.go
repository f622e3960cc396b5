package database

import (
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/s/courseStore/internal/config"
	"github.com/s/courseStore/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options shared by the service and the sqlite test database.
func Options() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func dialector(cfg config.DBConfig) gorm.Dialector {
	if cfg.Driver == "postgres" {
		// database/sql driver registered by lib/pq
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.URL})
	}
	return postgres.Open(cfg.URL)
}

func Connect(cfg config.DBConfig, log *logger.Logger) (*gorm.DB, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var db *gorm.DB
	var err error

	// The database container can take a few seconds to accept connections.
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(dialector(cfg), Options())
		if err == nil {
			log.Info("connected to database", "driver", cfg.Driver)
			return db, nil
		}

		log.Warn("database connection attempt failed", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}
