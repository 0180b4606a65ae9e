package memory

import (
	"context"
	"time"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/domain/repository"
	"jobconnect/internal/errors"
)

type passwordResetRepository struct {
	store *Store
	inTx  bool
}

// NewPasswordResetRepository returns a PasswordResetRepository over store.
func NewPasswordResetRepository(store *Store) repository.PasswordResetRepository {
	return &passwordResetRepository{store: store}
}

func (repo *passwordResetRepository) Create(_ context.Context, token *entity.PasswordResetToken) error {
	return repo.store.write(repo.inTx, func(t *tables) error {
		accountID, ok := token.AccountID()
		if !ok {
			return errors.Errorf("reset token binding does not match role %s", token.Role)
		}
		table, _ := t.accounts(token.Role)
		if _, exists := table[accountID]; !exists {
			return errors.Wrap(repository.ErrAccountNotFound, "reset token bound to a missing account")
		}
		if _, dup := t.tokenByHash[token.TokenHash]; dup {
			return errors.New("password reset token hash collision")
		}

		t.nextTokenID++
		token.ID = t.nextTokenID
		token.CreatedAt = time.Now().UTC()
		t.tokens[token.ID] = cloneToken(token)
		t.tokenByHash[token.TokenHash] = token.ID

		return nil
	})
}

func (repo *passwordResetRepository) FindByTokenHash(_ context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	var found *entity.PasswordResetToken
	err := repo.store.read(func(t *tables) error {
		id, ok := t.tokenByHash[tokenHash]
		if !ok {
			return repository.ErrResetTokenNotFound
		}
		found = cloneToken(t.tokens[id])

		return nil
	})

	return found, err
}

func (repo *passwordResetRepository) MarkUsed(_ context.Context, id int64, now time.Time) error {
	return repo.store.write(repo.inTx, func(t *tables) error {
		token, ok := t.tokens[id]
		if !ok || !token.IsRedeemable(now) {
			return repository.ErrResetTokenConsumed
		}
		token.Used = true

		return nil
	})
}

func (repo *passwordResetRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	err := repo.store.write(repo.inTx, func(t *tables) error {
		for id, token := range t.tokens {
			if token.ExpiresAt.After(now) {
				continue
			}
			delete(t.tokenByHash, token.TokenHash)
			delete(t.tokens, id)
			removed++
		}

		return nil
	})

	return removed, err
}
