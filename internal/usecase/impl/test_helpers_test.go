package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"jobconnect/config"
	domainerrors "jobconnect/internal/domain/errors"
	"jobconnect/internal/domain/repository"
	mockRepo "jobconnect/internal/mocks/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		PasswordReset: &config.PasswordResetConfig{
			BaseURL: "http://localhost:3000/",
		},
	}
}

// runTxWith makes txManager execute the callback against factory.
func runTxWith(txManager *mockRepo.MockTransactionManager, factory repository.RepositoryFactory) {
	txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(factory)
		}).
		Once()
}

func requireAppError(t *testing.T, err error, want *domainerrors.BaseError) domainerrors.AppError {
	t.Helper()

	require.Error(t, err)
	require.True(t, errors.Is(err, want), "want %s, got %v", want.ErrorCode(), err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))

	return appErr
}
