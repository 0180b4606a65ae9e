package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewAccountRepository(store)

	applicant := entity.NewApplicant("Jane Doe", "Jane@Example.com", "")
	require.NoError(t, repo.Create(ctx, applicant))
	assert.Equal(t, int64(1), applicant.ID)
	assert.False(t, applicant.CreatedAt.IsZero())

	employer := entity.NewEmployer("Bob", "hr@acme.io", "", "Acme", "Taipei")
	require.NoError(t, repo.Create(ctx, employer))
	assert.Equal(t, int64(1), employer.ID, "ids are scoped to the table of each kind")

	found, err := repo.FindByEmail(ctx, entity.RoleApplicant, "jane@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "Jane@Example.com", found.Email)

	_, err = repo.FindByEmail(ctx, entity.RoleEmployer, "jane@example.com")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	exists, err := repo.ExistsByEmail(ctx, entity.RoleEmployer, "HR@acme.io")
	require.NoError(t, err)
	assert.True(t, exists)

	byID, err := repo.FindByID(ctx, entity.RoleEmployer, employer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", byID.Employer.CompanyName)

	_, err = repo.FindByID(ctx, entity.Role("ADMIN"), 1)
	assert.ErrorIs(t, err, entity.ErrUnknownRole)
}

func TestAccountRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	account := entity.NewApplicant("Jane", "jane@example.com", "")
	require.NoError(t, repo.Create(ctx, account))
	account.Applicant.Bio = "changed after create"

	found, err := repo.FindByID(ctx, entity.RoleApplicant, account.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Applicant.Bio)
}

func TestAccountRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	account := entity.NewApplicant("Jane", "jane@example.com", "")
	account.PasswordHash = "original-hash"
	require.NoError(t, repo.Create(ctx, account))
	createdAt := account.CreatedAt

	account.Name = "Jane Roe"
	account.Email = "other@example.com"
	account.PasswordHash = "stale-hash"
	account.Applicant.Skills = "go,sql"
	require.NoError(t, repo.UpdateProfile(ctx, account))

	found, err := repo.FindByID(ctx, entity.RoleApplicant, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", found.Name)
	assert.Equal(t, "jane@example.com", found.Email, "email is immutable")
	assert.Equal(t, "original-hash", found.PasswordHash, "profile writes never touch the password")
	assert.Equal(t, "go,sql", found.Applicant.Skills)
	assert.True(t, found.CreatedAt.Equal(createdAt))

	missing := entity.NewEmployer("X", "x@example.com", "", "X", "")
	missing.ID = 42
	assert.ErrorIs(t, repo.UpdateProfile(ctx, missing), repository.ErrAccountNotFound)
}

func TestAccountRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	account := entity.NewEmployer("Sam", "sam@example.com", "", "Acme", "Berlin")
	account.PasswordHash = "old-hash"
	require.NoError(t, repo.Create(ctx, account))

	require.NoError(t, repo.UpdatePassword(ctx, entity.RoleEmployer, account.ID, "new-hash"))

	found, err := repo.FindByID(ctx, entity.RoleEmployer, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)
	assert.Equal(t, "Acme", found.Employer.CompanyName)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, entity.RoleApplicant, account.ID, "x"), repository.ErrAccountNotFound)
}

func TestAccountRepository_ReplacePassword(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	account := entity.NewApplicant("Jo", "jo@example.com", "")
	account.PasswordHash = "old-hash"
	require.NoError(t, repo.Create(ctx, account))

	require.NoError(t, repo.ReplacePassword(ctx, entity.RoleApplicant, account.ID, "old-hash", "first-hash"))
	assert.ErrorIs(t, repo.ReplacePassword(ctx, entity.RoleApplicant, account.ID, "old-hash", "second-hash"), repository.ErrPasswordChanged)
	assert.ErrorIs(t, repo.ReplacePassword(ctx, entity.RoleApplicant, account.ID+1, "old-hash", "x"), repository.ErrAccountNotFound)

	found, err := repo.FindByID(ctx, entity.RoleApplicant, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "first-hash", found.PasswordHash)
}

func TestAccountRepository_ReserveEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(NewStore())

	require.NoError(t, repo.ReserveEmail(ctx, "dup@example.com", entity.RoleApplicant))
	err := repo.ReserveEmail(ctx, " DUP@example.com", entity.RoleEmployer)
	assert.ErrorIs(t, err, repository.ErrEmailReserved)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := NewTransactionManager(store)
	boom := errors.New("boom")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		require.NoError(t, f.AccountRepo().ReserveEmail(ctx, "jane@example.com", entity.RoleApplicant))
		require.NoError(t, f.AccountRepo().Create(ctx, entity.NewApplicant("Jane", "jane@example.com", "")))

		return boom
	})
	require.ErrorIs(t, err, boom)

	repo := NewAccountRepository(store)
	exists, err := repo.ExistsByEmail(ctx, entity.RoleApplicant, "jane@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, repo.ReserveEmail(ctx, "jane@example.com", entity.RoleApplicant), "ledger entry must be rolled back")
}

func TestTransactionManager_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := NewTransactionManager(store)

	assert.Panics(t, func() {
		_ = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
			_ = f.AccountRepo().ReserveEmail(ctx, "jane@example.com", entity.RoleApplicant)
			panic("unexpected")
		})
	})

	assert.NoError(t, NewAccountRepository(store).ReserveEmail(ctx, "jane@example.com", entity.RoleApplicant))
}

func TestTransactionManager_ConcurrentReservationsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := NewTransactionManager(store)

	const workers = 16
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := range workers {
		role := entity.RoleApplicant
		if i%2 == 1 {
			role = entity.RoleEmployer
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
				if err := f.AccountRepo().ReserveEmail(ctx, "race@example.com", role); err != nil {
					return err
				}
				var account *entity.Account
				if role == entity.RoleApplicant {
					account = entity.NewApplicant("A", "race@example.com", "")
				} else {
					account = entity.NewEmployer("E", "race@example.com", "", "Co", "")
				}

				return f.AccountRepo().Create(ctx, account)
			})
			if err == nil {
				wins.Add(1)
			} else {
				assert.ErrorIs(t, err, repository.ErrEmailReserved)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestPasswordResetRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	accounts := NewAccountRepository(store)
	tokens := NewPasswordResetRepository(store)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	account := entity.NewEmployer("Bob", "hr@acme.io", "", "Acme", "")
	require.NoError(t, accounts.Create(ctx, account))

	token := entity.NewPasswordResetToken("digest-1", account, now.Add(time.Hour))
	require.NoError(t, tokens.Create(ctx, token))
	assert.NotZero(t, token.ID)

	found, err := tokens.FindByTokenHash(ctx, "digest-1")
	require.NoError(t, err)
	id, ok := found.AccountID()
	require.True(t, ok)
	assert.Equal(t, account.ID, id)
	assert.Equal(t, entity.RoleEmployer, found.Role)

	_, err = tokens.FindByTokenHash(ctx, "unknown")
	assert.ErrorIs(t, err, repository.ErrResetTokenNotFound)

	require.NoError(t, tokens.MarkUsed(ctx, token.ID, now))
	assert.ErrorIs(t, tokens.MarkUsed(ctx, token.ID, now), repository.ErrResetTokenConsumed)

	found, err = tokens.FindByTokenHash(ctx, "digest-1")
	require.NoError(t, err)
	assert.True(t, found.Used)
}

func TestPasswordResetRepository_MarkUsedRejectsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	accounts := NewAccountRepository(store)
	tokens := NewPasswordResetRepository(store)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	account := entity.NewApplicant("Jane", "jane@example.com", "")
	require.NoError(t, accounts.Create(ctx, account))
	token := entity.NewPasswordResetToken("digest", account, now)
	require.NoError(t, tokens.Create(ctx, token))

	assert.ErrorIs(t, tokens.MarkUsed(ctx, token.ID, now), repository.ErrResetTokenConsumed)
}

func TestPasswordResetRepository_CreateRequiresAccount(t *testing.T) {
	ctx := context.Background()
	tokens := NewPasswordResetRepository(NewStore())

	ghost := entity.NewApplicant("Ghost", "ghost@example.com", "")
	ghost.ID = 99
	err := tokens.Create(ctx, entity.NewPasswordResetToken("digest", ghost, time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestPasswordResetRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	accounts := NewAccountRepository(store)
	tokens := NewPasswordResetRepository(store)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	account := entity.NewApplicant("Jane", "jane@example.com", "")
	require.NoError(t, accounts.Create(ctx, account))
	require.NoError(t, tokens.Create(ctx, entity.NewPasswordResetToken("old", account, now.Add(-time.Minute))))
	require.NoError(t, tokens.Create(ctx, entity.NewPasswordResetToken("edge", account, now)))
	require.NoError(t, tokens.Create(ctx, entity.NewPasswordResetToken("fresh", account, now.Add(time.Hour))))

	removed, err := tokens.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = tokens.FindByTokenHash(ctx, "fresh")
	assert.NoError(t, err)
	_, err = tokens.FindByTokenHash(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrResetTokenNotFound)
}

func TestPasswordResetRepository_ConcurrentMarkUsedHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	accounts := NewAccountRepository(store)
	tokens := NewPasswordResetRepository(store)
	tm := NewTransactionManager(store)
	now := time.Now().UTC()

	account := entity.NewApplicant("Jane", "jane@example.com", "")
	require.NoError(t, accounts.Create(ctx, account))
	token := entity.NewPasswordResetToken("digest", account, now.Add(time.Hour))
	require.NoError(t, tokens.Create(ctx, token))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
				return f.PasswordResetRepo().MarkUsed(ctx, token.ID, now)
			})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
