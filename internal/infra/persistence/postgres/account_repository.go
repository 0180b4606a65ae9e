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

const emailMatch = "lower(email) = lower(?)"

var (
	applicantProfileColumns = []string{
		"full_name", "phone",
		"bio", "skills", "experience", "education", "resume_url",
		"updated_at",
	}
	employerProfileColumns = []string{
		"contact_name", "phone",
		"company_name", "company_description", "company_website", "company_location",
		"updated_at",
	}
)

// accountRepository implements repository.AccountRepository over the two account tables.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// FindByEmail reads from the primary so that a login straight after
// registration never misses a row that has not reached a replica yet.
func (repo *accountRepository) FindByEmail(ctx context.Context, role entity.Role, email string) (*entity.Account, error) {
	db := repo.db.WithContext(ctx).Clauses(dbresolver.Write)

	switch role {
	case entity.RoleApplicant:
		m, err := takeOne[model.ApplicantAccountModel](db, emailMatch, email)
		if err != nil {
			return nil, err
		}

		return toApplicantDomain(m), nil
	case entity.RoleEmployer:
		m, err := takeOne[model.EmployerAccountModel](db, emailMatch, email)
		if err != nil {
			return nil, err
		}

		return toEmployerDomain(m), nil
	default:
		return nil, errors.Wrapf(entity.ErrUnknownRole, "find by email: %q", role)
	}
}

// FindByID reads from the primary; its result feeds password checks and profile edits.
func (repo *accountRepository) FindByID(ctx context.Context, role entity.Role, id int64) (*entity.Account, error) {
	db := repo.db.WithContext(ctx).Clauses(dbresolver.Write)

	switch role {
	case entity.RoleApplicant:
		m, err := takeOne[model.ApplicantAccountModel](db, "id = ?", id)
		if err != nil {
			return nil, err
		}

		return toApplicantDomain(m), nil
	case entity.RoleEmployer:
		m, err := takeOne[model.EmployerAccountModel](db, "id = ?", id)
		if err != nil {
			return nil, err
		}

		return toEmployerDomain(m), nil
	default:
		return nil, errors.Wrapf(entity.ErrUnknownRole, "find by id: %q", role)
	}
}

// ExistsByEmail checks one table on the primary.
func (repo *accountRepository) ExistsByEmail(ctx context.Context, role entity.Role, email string) (bool, error) {
	var target any
	switch role {
	case entity.RoleApplicant:
		target = &model.ApplicantAccountModel{}
	case entity.RoleEmployer:
		target = &model.EmployerAccountModel{}
	default:
		return false, errors.Wrapf(entity.ErrUnknownRole, "exists by email: %q", role)
	}

	var count int64
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(target).
		Where(emailMatch, email).
		Count(&count).Error
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check email")
	}

	return count > 0, nil
}

// ReserveEmail inserts into the account_emails ledger. The primary key on the
// lower-cased email makes two concurrent registrations of one address collide
// even when they target different account tables.
func (repo *accountRepository) ReserveEmail(ctx context.Context, email string, role entity.Role) error {
	row := &model.AccountEmailModel{
		EmailKey:  emailKey(email),
		Role:      role.String(),
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailReserved
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to reserve email")
	}

	return nil
}

// Create inserts the account into the table picked by its role.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	db := repo.db.WithContext(ctx)

	var (
		err error
		id  int64
	)
	switch account.Role {
	case entity.RoleApplicant:
		m := fromApplicantDomain(account)
		err = db.Create(m).Error
		id = m.ID
	case entity.RoleEmployer:
		m := fromEmployerDomain(account)
		err = db.Create(m).Error
		id = m.ID
	default:
		return errors.Wrapf(entity.ErrUnknownRole, "create account: %q", account.Role)
	}

	if err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailReserved
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.ID = id

	return nil
}

// UpdateProfile writes the profile columns only. Email, role, created_at and
// password_hash are never touched, so a concurrent password change survives.
func (repo *accountRepository) UpdateProfile(ctx context.Context, account *entity.Account) error {
	updatedAt := time.Now().UTC()
	db := repo.db.WithContext(ctx)

	var result *gorm.DB
	switch account.Role {
	case entity.RoleApplicant:
		m := fromApplicantDomain(account)
		m.UpdatedAt = updatedAt
		result = db.Model(&model.ApplicantAccountModel{ID: account.ID}).
			Select(applicantProfileColumns).
			Updates(m)
	case entity.RoleEmployer:
		m := fromEmployerDomain(account)
		m.UpdatedAt = updatedAt
		result = db.Model(&model.EmployerAccountModel{ID: account.ID}).
			Select(employerProfileColumns).
			Updates(m)
	default:
		return errors.Wrapf(entity.ErrUnknownRole, "update profile: %q", account.Role)
	}

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update profile")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	account.UpdatedAt = updatedAt

	return nil
}

// UpdatePassword sets password_hash and updated_at on one row.
func (repo *accountRepository) UpdatePassword(ctx context.Context, role entity.Role, id int64, passwordHash string) error {
	var target any
	switch role {
	case entity.RoleApplicant:
		target = &model.ApplicantAccountModel{ID: id}
	case entity.RoleEmployer:
		target = &model.EmployerAccountModel{ID: id}
	default:
		return errors.Wrapf(entity.ErrUnknownRole, "update password: %q", role)
	}

	result := repo.db.WithContext(ctx).
		Model(target).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update password")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

// ReplacePassword is UpdatePassword conditioned on password_hash still being
// currentHash, so two overlapping password changes cannot both succeed.
func (repo *accountRepository) ReplacePassword(ctx context.Context, role entity.Role, id int64, currentHash, newHash string) error {
	var target any
	switch role {
	case entity.RoleApplicant:
		target = &model.ApplicantAccountModel{ID: id}
	case entity.RoleEmployer:
		target = &model.EmployerAccountModel{ID: id}
	default:
		return errors.Wrapf(entity.ErrUnknownRole, "replace password: %q", role)
	}

	result := repo.db.WithContext(ctx).
		Model(target).
		Where("password_hash = ?", currentHash).
		Updates(map[string]any{
			"password_hash": newHash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to replace password")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := repo.FindByID(ctx, role, id); err != nil {
		return err
	}

	return repository.ErrPasswordChanged
}

// takeOne loads a single row of M matching query or reports ErrAccountNotFound.
func takeOne[M any](db *gorm.DB, query string, args ...any) (*M, error) {
	var m M
	if err := db.Where(query, args...).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load account")
	}

	return &m, nil
}
