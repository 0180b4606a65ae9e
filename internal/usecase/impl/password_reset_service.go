package impl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"jobconnect/config"
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

const resetPath = "/reset-password"

// passwordResetService implements the PasswordResetUsecase interface.
type passwordResetService struct {
	txManager repository.TransactionManager
	resetRepo repository.PasswordResetRepository
	resolver  usecase.PrincipalResolver
	hasher    service.PasswordHasher
	generator service.ResetTokenGenerator
	notifier  service.ResetNotifier
	clock     service.Clock
	baseURL   string
	tokenTTL  time.Duration
	metrics   *metrics.AuthMetrics
	logger    *slog.Logger
}

// PasswordResetServiceParams holds dependencies for PasswordResetService, injected by Fx.
type PasswordResetServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	ResetRepo repository.PasswordResetRepository
	Resolver  usecase.PrincipalResolver
	Hasher    service.PasswordHasher
	Generator service.ResetTokenGenerator
	Notifier  service.ResetNotifier
	Clock     service.Clock
	Config    *config.Config
	Metrics   *metrics.AuthMetrics `optional:"true"`
	Logger    *slog.Logger
}

// NewPasswordResetService is the constructor for passwordResetService.
func NewPasswordResetService(params PasswordResetServiceParams) usecase.PasswordResetUsecase {
	srv := &passwordResetService{
		txManager: params.TxManager,
		resetRepo: params.ResetRepo,
		resolver:  params.Resolver,
		hasher:    params.Hasher,
		generator: params.Generator,
		notifier:  params.Notifier,
		clock:     params.Clock,
		tokenTTL:  entity.DefaultPasswordResetTTL,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
	if cfg := params.Config.PasswordReset; cfg != nil {
		srv.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		if cfg.TokenTTL > 0 {
			srv.tokenTTL = cfg.TokenTTL
		}
	}

	return srv
}

func (srv *passwordResetService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ForgotPassword issues a fresh token for the account owning the email and
// hands the reset link to the notifier.
func (srv *passwordResetService) ForgotPassword(ctx context.Context, input *usecase.ForgotPasswordInput) error {
	email := strings.TrimSpace(input.Email)

	account, err := srv.resolver.Resolve(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return errors.Wrap(domainerrors.ErrAccountNotFound, "forgot password")
	}
	if err != nil {
		return errors.Wrap(err, "failed to resolve account")
	}

	now := srv.clock.Now()

	purged, err := srv.resetRepo.DeleteExpired(ctx, now)
	if err != nil {
		srv.log(ctx).Warn("Failed to purge expired reset tokens", slog.Any("error", err))
	} else if purged > 0 {
		srv.log(ctx).Debug("Purged expired reset tokens", slog.Int64("count", purged))
	}

	raw, digest, err := srv.generator.Generate()
	if err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}

	token := entity.NewPasswordResetToken(digest, account, now.Add(srv.tokenTTL))
	if err := srv.resetRepo.Create(ctx, token); err != nil {
		return errors.Wrap(err, "failed to store reset token")
	}
	srv.metrics.RecordPasswordReset(metrics.StageRequested)

	link := srv.baseURL + resetPath + "?token=" + url.QueryEscape(raw)
	if err := srv.notifier.SendPasswordResetMessage(ctx, account.Email, link, account.DisplayName()); err != nil {
		srv.log(ctx).Error("Failed to dispatch password reset message",
			slog.String("role", account.Role.String()),
			slog.Int64("accountID", account.ID),
			slog.Any("error", err),
		)

		return errors.Wrap(domainerrors.ErrDeliveryFailure, err.Error())
	}
	srv.metrics.RecordPasswordReset(metrics.StageDelivered)

	srv.log(ctx).Info("Password reset requested",
		slog.String("role", account.Role.String()),
		slog.Int64("accountID", account.ID),
		slog.Time("expiresAt", token.ExpiresAt),
	)

	return nil
}

// ResetPassword redeems the token at most once and replaces the password in
// the same transaction. A lost redemption race changes nothing, and neither
// does a token whose account has been removed.
func (srv *passwordResetService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	raw := strings.TrimSpace(input.Token)
	if raw == "" {
		return srv.reject(ctx, "empty token")
	}

	token, err := srv.resetRepo.FindByTokenHash(ctx, srv.generator.Digest(raw))
	if errors.Is(err, repository.ErrResetTokenNotFound) {
		return srv.reject(ctx, "unknown token")
	}
	if err != nil {
		return errors.Wrap(err, "failed to load reset token")
	}

	now := srv.clock.Now()
	if !token.IsRedeemable(now) {
		return srv.reject(ctx, "token used or expired")
	}

	accountID, ok := token.AccountID()
	if !ok {
		return errors.Wrap(domainerrors.ErrAccountNotFound, "reset token has no account binding")
	}

	hash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	// Only password_hash is written, so profile edits made meanwhile are kept
	// and cannot bring the old hash back.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.PasswordResetRepo().MarkUsed(ctx, token.ID, now); err != nil {
			return err
		}

		return repoFactory.AccountRepo().UpdatePassword(ctx, token.Role, accountID, hash)
	})
	switch {
	case errors.Is(err, repository.ErrResetTokenConsumed):
		return srv.reject(ctx, "lost redemption race")
	case errors.Is(err, repository.ErrAccountNotFound):
		return errors.Wrap(domainerrors.ErrAccountNotFound, "reset token bound to a missing account")
	case err != nil:
		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.metrics.RecordPasswordReset(metrics.StageRedeemed)
	srv.log(ctx).Info("Password reset completed",
		slog.String("role", token.Role.String()),
		slog.Int64("accountID", accountID),
	)

	return nil
}

func (srv *passwordResetService) reject(ctx context.Context, reason string) error {
	srv.metrics.RecordPasswordReset(metrics.StageRejected)
	srv.log(ctx).Info("Password reset rejected", slog.String("reason", reason))

	return errors.Wrap(domainerrors.ErrInvalidOrExpiredToken, reason)
}
