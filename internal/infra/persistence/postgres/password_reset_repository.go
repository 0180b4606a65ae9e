package postgres

import (
	"context"
	"time"

	"jobconnect/internal/domain/entity"
	domainerrors "jobconnect/internal/domain/errors"
	"jobconnect/internal/domain/repository"
	"jobconnect/internal/errors"
	"jobconnect/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// passwordResetRepository implements repository.PasswordResetRepository.
type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository is the constructor for passwordResetRepository.
func NewPasswordResetRepository(db *gorm.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

// Create persists a new reset token.
func (repo *passwordResetRepository) Create(ctx context.Context, token *entity.PasswordResetToken) error {
	m := fromResetTokenDomain(token)
	m.CreatedAt = time.Now().UTC()

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		switch {
		case isForeignKeyConstraintViolation(err):
			return errors.Wrap(repository.ErrAccountNotFound, "reset token bound to a missing account")
		case isCheckConstraintViolation(err):
			return errors.Errorf("reset token binding does not match role %s", token.Role)
		default:
			return domainerrors.NewDatabaseExecuteError(err, "failed to create password reset token")
		}
	}

	token.ID = m.ID
	token.CreatedAt = m.CreatedAt

	return nil
}

// FindByTokenHash reads from the primary; a reset link is often opened seconds after it was issued.
func (repo *passwordResetRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	var m model.PasswordResetTokenModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("token_hash = ?", tokenHash).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrResetTokenNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load password reset token")
	}

	return toResetTokenDomain(&m), nil
}

// MarkUsed is a compare-and-set on the used flag. Postgres serializes
// concurrent UPDATEs of the same row, so only one caller sees a row affected.
func (repo *passwordResetRepository) MarkUsed(ctx context.Context, id int64, now time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PasswordResetTokenModel{}).
		Where("id = ? AND used = ? AND expires_at > ?", id, false, now).
		Update("used", true)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to redeem password reset token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrResetTokenConsumed
	}

	return nil
}

// DeleteExpired purges every token whose expiry has passed, regardless of owner.
func (repo *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.PasswordResetTokenModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge expired password reset tokens")
	}

	return result.RowsAffected, nil
}
