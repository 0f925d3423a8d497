package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

func newMigrator(sqlDB *sql.DB, provider string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+provider)
	if err != nil {
		return nil, fmt.Errorf("no migrations for provider %s: %w", provider, err)
	}

	var driver database.Driver
	switch provider {
	case "mysql":
		driver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	case "postgres":
		driver, err = migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	case "sqlite3":
		driver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("migrations are not supported for provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", provider, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, provider, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending migrations
func RunMigrations(sqlDB *sql.DB, provider string) error {
	m, err := newMigrator(sqlDB, provider)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RollbackMigration reverts the most recently applied migration
func RollbackMigration(sqlDB *sql.DB, provider string) error {
	m, err := newMigrator(sqlDB, provider)
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version. ok is false when no
// migration has been applied yet.
func MigrationVersion(sqlDB *sql.DB, provider string) (version uint, dirty bool, ok bool, err error) {
	m, err := newMigrator(sqlDB, provider)
	if err != nil {
		return 0, false, false, err
	}

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, true, nil
}
