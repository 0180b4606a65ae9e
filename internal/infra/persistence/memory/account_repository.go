package memory

import (
	"context"
	"strings"
	"time"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/domain/repository"
	"jobconnect/internal/errors"
)

type accountRepository struct {
	store *Store
	inTx  bool
}

// NewAccountRepository returns an AccountRepository over store.
func NewAccountRepository(store *Store) repository.AccountRepository {
	return &accountRepository{store: store}
}

func (repo *accountRepository) FindByEmail(_ context.Context, role entity.Role, email string) (*entity.Account, error) {
	var found *entity.Account
	err := repo.store.read(func(t *tables) error {
		table, ok := t.accounts(role)
		if !ok {
			return errors.Wrapf(entity.ErrUnknownRole, "find by email: %q", role)
		}
		for _, a := range table {
			if strings.EqualFold(a.Email, email) {
				found = cloneAccount(a)

				return nil
			}
		}

		return repository.ErrAccountNotFound
	})

	return found, err
}

func (repo *accountRepository) FindByID(_ context.Context, role entity.Role, id int64) (*entity.Account, error) {
	var found *entity.Account
	err := repo.store.read(func(t *tables) error {
		table, ok := t.accounts(role)
		if !ok {
			return errors.Wrapf(entity.ErrUnknownRole, "find by id: %q", role)
		}
		a, ok := table[id]
		if !ok {
			return repository.ErrAccountNotFound
		}
		found = cloneAccount(a)

		return nil
	})

	return found, err
}

func (repo *accountRepository) ExistsByEmail(ctx context.Context, role entity.Role, email string) (bool, error) {
	_, err := repo.FindByEmail(ctx, role, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrAccountNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (repo *accountRepository) ReserveEmail(_ context.Context, email string, role entity.Role) error {
	key := strings.ToLower(strings.TrimSpace(email))

	return repo.store.write(repo.inTx, func(t *tables) error {
		if _, taken := t.emails[key]; taken {
			return repository.ErrEmailReserved
		}
		t.emails[key] = role

		return nil
	})
}

func (repo *accountRepository) Create(_ context.Context, account *entity.Account) error {
	return repo.store.write(repo.inTx, func(t *tables) error {
		table, ok := t.accounts(account.Role)
		if !ok {
			return errors.Wrapf(entity.ErrUnknownRole, "create account: %q", account.Role)
		}
		for _, a := range table {
			if strings.EqualFold(a.Email, account.Email) {
				return repository.ErrEmailReserved
			}
		}

		var id int64
		if account.Role == entity.RoleApplicant {
			t.nextApplicantID++
			id = t.nextApplicantID
		} else {
			t.nextEmployerID++
			id = t.nextEmployerID
		}

		now := time.Now().UTC()
		account.ID = id
		account.CreatedAt = now
		account.UpdatedAt = now
		table[id] = cloneAccount(account)

		return nil
	})
}

func (repo *accountRepository) UpdateProfile(_ context.Context, account *entity.Account) error {
	return repo.store.write(repo.inTx, func(t *tables) error {
		current, err := t.account(account.Role, account.ID)
		if err != nil {
			return err
		}

		next := cloneAccount(account)
		next.Email = current.Email
		next.PasswordHash = current.PasswordHash
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = time.Now().UTC()
		t.put(next)
		account.PasswordHash = current.PasswordHash
		account.UpdatedAt = next.UpdatedAt

		return nil
	})
}

func (repo *accountRepository) UpdatePassword(_ context.Context, role entity.Role, id int64, passwordHash string) error {
	return repo.store.write(repo.inTx, func(t *tables) error {
		current, err := t.account(role, id)
		if err != nil {
			return err
		}

		next := cloneAccount(current)
		next.PasswordHash = passwordHash
		next.UpdatedAt = time.Now().UTC()
		t.put(next)

		return nil
	})
}

func (repo *accountRepository) ReplacePassword(_ context.Context, role entity.Role, id int64, currentHash, newHash string) error {
	return repo.store.write(repo.inTx, func(t *tables) error {
		current, err := t.account(role, id)
		if err != nil {
			return err
		}
		if current.PasswordHash != currentHash {
			return repository.ErrPasswordChanged
		}

		next := cloneAccount(current)
		next.PasswordHash = newHash
		next.UpdatedAt = time.Now().UTC()
		t.put(next)

		return nil
	})
}
