package postgres

import (
	"context"
	"log/slog"

	"jobconnect/config"
	"jobconnect/internal/domain/lifecycle"
	"jobconnect/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry `optional:"true"`
}

// New opens the PostgreSQL pool. The schema is brought up to date on start
// when storage.autoMigrate is set, and pool statistics (open, in-use and
// idle connections, wait count and duration) are exported on Registry.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Multi-statement work (registration, reset redemption) goes through txManager.Execute.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	var poolStats prometheus.Collector
	if params.Registry != nil {
		poolStats = collectors.NewDBStatsCollector(sqlDB, poolStatsName(params.Config))
		if err := params.Registry.Register(poolStats); err != nil {
			return nil, errors.Wrap(err, "failed to register PostgreSQL pool metrics")
		}
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if params.Config.Storage == nil || !params.Config.Storage.AutoMigrate {
				return nil
			}
			if err := MigrateUp(ctx, sqlDB); err != nil {
				return err
			}
			params.Logger.InfoContext(ctx, "Database migrations applied")

			return nil
		},
		OnStop: func(_ context.Context) error {
			if poolStats != nil {
				params.Registry.Unregister(poolStats)
			}

			return sqlDB.Close()
		},
	})

	return db, nil
}

// poolStatsName is the db_name label of the pool metrics.
func poolStatsName(cfg *config.Config) string {
	if cfg.Env.ServiceName != "" {
		return cfg.Env.ServiceName
	}

	return "jobconnect"
}
