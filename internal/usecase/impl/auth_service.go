// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/domain/entity"
	domainerrors "jobconnect/internal/domain/errors"
	"jobconnect/internal/domain/repository"
	"jobconnect/internal/domain/service"
	"jobconnect/internal/infra/metrics"
	"jobconnect/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// unknownAccountPassword is hashed once at start-up. Logins for an unknown
// email are checked against that hash so they cost as much as a wrong password.
const unknownAccountPassword = "jobconnect-unknown-account"

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	metrics      *metrics.AuthMetrics
	logger       *slog.Logger
	unknownHash  string
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Metrics      *metrics.AuthMetrics `optional:"true"`
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	srv := &authService{
		txManager:    params.TxManager,
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		metrics:      params.Metrics,
		logger:       params.Logger,
	}

	hash, err := params.Hasher.Hash(unknownAccountPassword)
	if err != nil {
		params.Logger.Warn("Failed to prepare unknown-account hash, login timing may reveal accounts", slog.Any("error", err))
	}
	srv.unknownHash = hash

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login authenticates against the table of the declared role only. Unknown
// email, wrong role and wrong password are indistinguishable to the caller.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidRole, "login")
	}

	email := strings.TrimSpace(input.Email)

	account, err := srv.accountRepo.FindByEmail(ctx, role, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		srv.hasher.Check(input.Password, srv.unknownHash)
		srv.metrics.RecordLogin(role.String(), metrics.OutcomeFailure)
		srv.log(ctx).Info("Login rejected", slog.String("role", role.String()), slog.String("reason", "unknown email"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "account not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.metrics.RecordLogin(role.String(), metrics.OutcomeFailure)
		srv.log(ctx).Info("Login rejected", slog.String("role", role.String()), slog.Int64("accountID", account.ID), slog.String("reason", "password mismatch"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
	}

	output, err := srv.issue(account)
	if err != nil {
		return nil, err
	}

	srv.metrics.RecordLogin(role.String(), metrics.OutcomeSuccess)
	srv.log(ctx).Debug("Login succeeded", slog.String("role", role.String()), slog.Int64("accountID", account.ID))

	return output, nil
}

// Register creates an account of the requested kind and signs the holder in.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	email := strings.TrimSpace(input.Email)

	for _, role := range entity.AllRoles {
		exists, err := srv.accountRepo.ExistsByEmail(ctx, role, email)
		if err != nil {
			return nil, errors.Wrap(err, "failed to check email")
		}
		if exists {
			return nil, errors.Wrapf(domainerrors.ErrEmailTaken, "held by %s account", role)
		}
	}

	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidRole, "register")
	}

	var account *entity.Account
	switch role {
	case entity.RoleEmployer:
		companyName := strings.TrimSpace(input.CompanyName)
		if companyName == "" {
			return nil, errors.Wrap(domainerrors.ErrMissingCompanyName, "register")
		}
		account = entity.NewEmployer(strings.TrimSpace(input.Name), email, strings.TrimSpace(input.Phone), companyName, strings.TrimSpace(input.CompanyLocation))
	default:
		account = entity.NewApplicant(strings.TrimSpace(input.Name), email, strings.TrimSpace(input.Phone))
	}

	account.PasswordHash, err = srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		if err := accountRepo.ReserveEmail(ctx, email, role); err != nil {
			return err
		}

		return accountRepo.Create(ctx, account)
	})
	if errors.Is(err, repository.ErrEmailReserved) {
		return nil, errors.Wrap(domainerrors.ErrEmailTaken, "lost registration race")
	}
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("role", role.String()), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	output, err := srv.issue(account)
	if err != nil {
		return nil, err
	}

	srv.metrics.RecordRegistration(role.String())
	srv.log(ctx).Info("Account registered", slog.String("role", role.String()), slog.Int64("accountID", account.ID))

	return output, nil
}

// CurrentUser loads the caller's own account.
func (srv *authService) CurrentUser(ctx context.Context, principal entity.Principal) (*entity.Account, error) {
	return srv.loadOwnAccount(ctx, principal)
}

// UpdateProfile overwrites the editable fields of the caller's kind. The
// password hash is left to UpdatePassword so that a reset racing this call wins.
func (srv *authService) UpdateProfile(ctx context.Context, principal entity.Principal, input *usecase.UpdateProfileInput) (*entity.Account, error) {
	account, err := srv.loadOwnAccount(ctx, principal)
	if err != nil {
		return nil, err
	}

	account.Name = strings.TrimSpace(input.Name)
	account.Phone = strings.TrimSpace(input.Phone)

	switch account.Role {
	case entity.RoleApplicant:
		account.Applicant = &entity.ApplicantProfile{
			Bio:        input.Bio,
			Skills:     input.Skills,
			Experience: input.Experience,
			Education:  input.Education,
			ResumeURL:  strings.TrimSpace(input.ResumeURL),
		}
	case entity.RoleEmployer:
		companyName := strings.TrimSpace(input.CompanyName)
		if companyName == "" {
			return nil, errors.Wrap(domainerrors.ErrMissingCompanyName, "update profile")
		}
		account.Employer = &entity.EmployerProfile{
			CompanyName:        companyName,
			CompanyDescription: input.CompanyDescription,
			CompanyWebsite:     strings.TrimSpace(input.CompanyWebsite),
			CompanyLocation:    strings.TrimSpace(input.CompanyLocation),
		}
	}

	if err := srv.accountRepo.UpdateProfile(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.Wrap(domainerrors.ErrAccountNotFound, "account vanished during profile update")
		}

		return nil, errors.Wrap(err, "failed to update profile")
	}

	srv.log(ctx).Info("Profile updated", slog.String("role", account.Role.String()), slog.Int64("accountID", account.ID))

	return account, nil
}

// ChangePassword checks old against the caller's own account before replacing it.
func (srv *authService) ChangePassword(ctx context.Context, principal entity.Principal, input *usecase.ChangePasswordInput) error {
	account, err := srv.loadOwnAccount(ctx, principal)
	if err != nil {
		return err
	}

	if !srv.hasher.Check(input.OldPassword, account.PasswordHash) {
		return errors.Wrap(domainerrors.ErrInvalidOldPassword, "change password")
	}

	hash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	// Conditioned on the hash just verified: of two overlapping changes that
	// both know the old password, only the first succeeds.
	err = srv.accountRepo.ReplacePassword(ctx, account.Role, account.ID, account.PasswordHash, hash)
	if errors.Is(err, repository.ErrPasswordChanged) {
		return errors.Wrap(domainerrors.ErrInvalidOldPassword, "password changed concurrently")
	}
	if errors.Is(err, repository.ErrAccountNotFound) {
		return errors.Wrap(domainerrors.ErrAccountNotFound, "account vanished during password change")
	}
	if err != nil {
		return errors.Wrap(err, "failed to store new password")
	}

	srv.log(ctx).Info("Password changed", slog.String("role", account.Role.String()), slog.Int64("accountID", account.ID))

	return nil
}

func (srv *authService) loadOwnAccount(ctx context.Context, principal entity.Principal) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, principal.Role, principal.AccountID)
	if errors.Is(err, repository.ErrAccountNotFound) || errors.Is(err, entity.ErrUnknownRole) {
		return nil, errors.Wrap(domainerrors.ErrAccountNotFound, "principal has no account")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load account")
	}

	return account, nil
}

func (srv *authService) issue(account *entity.Account) (*usecase.AuthOutput, error) {
	token, expiresAt, err := srv.tokenService.Issue(account.Principal())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token")
	}

	return &usecase.AuthOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}
