package jobstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	dtceconfig "github.com/brillob/dtce/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies any pending golang-migrate migrations against the job
// status database. This is the schema-ownership path for production
// deployments; PostgresStore's AutoMigrate is only a throwaway-db
// convenience for local experimentation against Prod mode.
func Migrate(opts dtceconfig.PostgresOptions) error {
	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return fmt.Errorf("jobstore: open db: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("jobstore: init postgres driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("jobstore: load migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("jobstore: init migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("jobstore: apply migrations: %w", err)
	}
	return nil
}
