package postgres

import (
	"context"
	"database/sql"
	"sync"

	"jobconnect/config"
	"jobconnect/internal/errors"
	"jobconnect/migrations"

	"github.com/pressly/goose/v3"
	pgLib "github.com/slighter12/go-lib/database/postgres"
)

const migrationsDir = "."

var gooseOnce sync.Once

// gooseUp is swapped in tests that must not touch a real database.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	return goose.UpContext(ctx, db, migrationsDir)
}

func setupGoose() error {
	var err error
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		err = goose.SetDialect("postgres")
	})

	return errors.Wrap(err, "failed to configure goose")
}

// MigrateUp applies every pending embedded migration.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	return errors.Wrap(gooseUp(ctx, db), "failed to apply migrations")
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	return errors.Wrap(goose.DownContext(ctx, db, migrationsDir), "failed to roll back migration")
}

// MigrateStatus prints the state of every embedded migration through goose's logger.
func MigrateStatus(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	return errors.Wrap(goose.StatusContext(ctx, db, migrationsDir), "failed to read migration status")
}

// MigrationVersion reports the current schema version.
func MigrationVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setupGoose(); err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read migration version")
	}

	return version, nil
}

// OpenSQL opens the primary connection for tools that run outside the fx graph.
func OpenSQL(cfg *config.Config) (*sql.DB, error) {
	if cfg.Postgres == nil {
		return nil, errors.New("postgres section is not configured")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	return sqlDB, nil
}
