package repository

import (
	"context"
	"errors"
	"time"

	"jobconnect/internal/domain/entity"
)

var (
	// ErrResetTokenNotFound is returned when no reset token has the given hash.
	ErrResetTokenNotFound = errors.New("password reset token not found")

	// ErrResetTokenConsumed is returned by MarkUsed when the token was already
	// redeemed or expired by the time the write happened.
	ErrResetTokenConsumed = errors.New("password reset token already consumed")
)

// PasswordResetRepository persists single-use password reset tokens.
type PasswordResetRepository interface {
	// Create stores a new token and fills in its ID and CreatedAt.
	Create(ctx context.Context, token *entity.PasswordResetToken) error

	// FindByTokenHash returns the token whose hash matches.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error)

	// MarkUsed flips the used flag only if it is still false and the token has
	// not expired at now. Losing that race yields ErrResetTokenConsumed.
	MarkUsed(ctx context.Context, id int64, now time.Time) error

	// DeleteExpired removes every token whose expiry is at or before now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
