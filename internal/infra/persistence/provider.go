// Package persistence selects the repository implementation named by storage.driver.
package persistence

import (
	"log/slog"

	"jobconnect/config"
	"jobconnect/internal/domain/repository"
	"jobconnect/internal/errors"
	"jobconnect/internal/infra/persistence/memory"
	"jobconnect/internal/infra/persistence/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry `optional:"true"`
}

// Result exposes every repository the use cases depend on.
type Result struct {
	fx.Out

	TxManager         repository.TransactionManager
	AccountRepo       repository.AccountRepository
	PasswordResetRepo repository.PasswordResetRepository
}

// New wires the repositories for the configured storage driver.
func New(params Params) (Result, error) {
	driver := config.StorageDriverPostgres
	if params.Config.Storage != nil {
		driver = params.Config.Storage.Driver
	}

	switch driver {
	case config.StorageDriverMemory:
		params.Logger.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()

		return Result{
			TxManager:         memory.NewTransactionManager(store),
			AccountRepo:       memory.NewAccountRepository(store),
			PasswordResetRepo: memory.NewPasswordResetRepository(store),
		}, nil
	case config.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
			Registry:  params.Registry,
		})
		if err != nil {
			return Result{}, err
		}

		return Result{
			TxManager:         postgres.NewTransactionManager(db),
			AccountRepo:       postgres.NewAccountRepository(db),
			PasswordResetRepo: postgres.NewPasswordResetRepository(db),
		}, nil
	default:
		return Result{}, errors.Errorf("unsupported storage driver %q", driver)
	}
}
