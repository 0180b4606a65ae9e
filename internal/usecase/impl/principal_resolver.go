package impl

import (
	"context"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/domain/repository"
	"jobconnect/internal/usecase"

	"github.com/pkg/errors"
)

type principalResolver struct {
	accountRepo repository.AccountRepository
}

// NewPrincipalResolver is the constructor for principalResolver.
func NewPrincipalResolver(accountRepo repository.AccountRepository) usecase.PrincipalResolver {
	return &principalResolver{accountRepo: accountRepo}
}

// Resolve looks the email up in each account table in entity.AllRoles order.
func (r *principalResolver) Resolve(ctx context.Context, email string) (*entity.Account, error) {
	for _, role := range entity.AllRoles {
		account, err := r.accountRepo.FindByEmail(ctx, role, email)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.Wrapf(err, "failed to look up %s account", role)
		}
	}

	return nil, repository.ErrAccountNotFound
}
