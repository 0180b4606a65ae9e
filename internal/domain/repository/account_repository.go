// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"jobconnect/internal/domain/entity"
)

var (
	// ErrAccountNotFound is returned when no account of the requested kind matches.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailReserved is returned when an email is already held by an account of any kind.
	ErrEmailReserved = errors.New("email already reserved")

	// ErrPasswordChanged is returned by ReplacePassword when the stored hash
	// no longer matches the one the caller verified against.
	ErrPasswordChanged = errors.New("password changed concurrently")
)

// AccountRepository is the credential store. Every method is scoped to one
// account kind, so callers pick the applicant or employer table explicitly.
type AccountRepository interface {
	// FindByEmail returns the account of the given kind whose email matches case-insensitively.
	FindByEmail(ctx context.Context, role entity.Role, email string) (*entity.Account, error)

	// FindByID returns the account of the given kind by its table id.
	FindByID(ctx context.Context, role entity.Role, id int64) (*entity.Account, error)

	// ExistsByEmail reports whether the table of the given kind already holds email.
	ExistsByEmail(ctx context.Context, role entity.Role, email string) (bool, error)

	// ReserveEmail claims email in the cross-kind ledger. It fails with
	// ErrEmailReserved when any account already holds it.
	ReserveEmail(ctx context.Context, email string, role entity.Role) error

	// Create inserts account into the table picked by account.Role and fills in ID and timestamps.
	Create(ctx context.Context, account *entity.Account) error

	// UpdateProfile writes the name, phone and kind-specific profile of account
	// and refreshes UpdatedAt. The password hash is never written here.
	UpdateProfile(ctx context.Context, account *entity.Account) error

	// UpdatePassword replaces only the password hash of one account.
	UpdatePassword(ctx context.Context, role entity.Role, id int64, passwordHash string) error

	// ReplacePassword swaps the hash only while it still equals currentHash,
	// failing with ErrPasswordChanged otherwise.
	ReplacePassword(ctx context.Context, role entity.Role, id int64, currentHash, newHash string) error
}
