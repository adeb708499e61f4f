package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations creates the menu, table, order and audit tables for the
// configured dialect. A database that is already current is left untouched.
func RunMigrations(db *sql.DB, dialect string) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	name, driver, err := databaseDriver(db, dialect)
	if err != nil {
		return err
	}

	sub, err := fs.Sub(embeddedMigrations, path.Join(migrationsDir, name))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, name, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

func databaseDriver(db *sql.DB, dialect string) (string, database.Driver, error) {
	var (
		name   string
		driver database.Driver
		err    error
	)
	switch dialect {
	case "postgres":
		name = "postgres"
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case "mysql":
		name = "mysql"
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case "sqlite", "sqlite3", "":
		name = "sqlite3"
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return "", nil, fmt.Errorf("unsupported migration dialect %q", dialect)
	}
	if err != nil {
		return "", nil, fmt.Errorf("create migration driver: %w", err)
	}
	return name, driver, nil
}
