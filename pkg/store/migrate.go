package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/cuemby/vmctrl/pkg/apperr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending up migration embedded in this package
// (spec §6.5's relational schema) against dsn. Safe to call on every
// process start: golang-migrate is a no-op once the schema is current.
func Migrate(dsn string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return apperr.WrapConfig(fmt.Errorf("load embedded migrations: %w", err))
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return apperr.WrapPersistence(fmt.Errorf("migration runner: %w", err))
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperr.WrapPersistence(fmt.Errorf("apply migrations: %w", err))
	}
	return nil
}
