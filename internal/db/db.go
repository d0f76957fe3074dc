// Package db opens the database, applies the schema and seeds reference rows.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/diewo77/scam-catalog/internal/config"
	"github.com/diewo77/scam-catalog/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table managed by AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Case{},
		&models.Identifier{},
		&models.Image{},
		&models.CustomField{},
		&models.CaseLink{},
		&models.Profile{},
		&models.FieldAccessPolicy{},
		&models.Entitlement{},
	}
}

// Connect opens the configured database, retrying postgres while it starts.
func Connect(cfg config.DatabaseConfig, debug bool, log *slog.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	switch cfg.Driver {
	case "sqlite":
		log.Info("opening sqlite database", "path", cfg.Path)
		db, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	log.Info("connecting to database", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName, "user", cfg.User)
	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	return db, nil
}

// sqliteDSN turns on foreign keys for every pooled connection, not just the
// first one.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// Migrate applies the schema with AutoMigrate and checks the core tables.
func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"cases", "identifiers", "case_links", "field_access_policies"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
