package memory

import (
	"context"

	"jobconnect/internal/domain/repository"
)

type transactionManager struct {
	store *Store
}

type repositoryFactory struct {
	store *Store
}

func (f *repositoryFactory) AccountRepo() repository.AccountRepository {
	return &accountRepository{store: f.store, inTx: true}
}

func (f *repositoryFactory) PasswordResetRepo() repository.PasswordResetRepository {
	return &passwordResetRepository{store: f.store, inTx: true}
}

// NewTransactionManager returns a TransactionManager over store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn with exclusive write access to the store. The tables are
// snapshotted first and restored when fn fails or panics.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	before := tm.store.snapshot()
	committed := false
	defer func() {
		if !committed {
			tm.store.restore(before)
		}
	}()

	if err := fn(&repositoryFactory{store: tm.store}); err != nil {
		return err
	}
	committed = true

	return nil
}
