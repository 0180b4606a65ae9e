package usecase

import (
	"context"

	"jobconnect/internal/domain/entity"
)

// PrincipalResolver finds the account that owns an email across both account kinds.
// Applicants take precedence when, for legacy rows, both tables hold the email.
type PrincipalResolver interface {
	Resolve(ctx context.Context, email string) (*entity.Account, error)
}
