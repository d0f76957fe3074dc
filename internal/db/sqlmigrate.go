package db

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultMigrationsSource is the golang-migrate source URL of the SQL files.
const DefaultMigrationsSource = "file://migrations"

// RunSQLMigrations applies the SQL migrations in source to the postgres
// database at databaseURL. An up-to-date schema is not an error.
func RunSQLMigrations(source, databaseURL string) error {
	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
