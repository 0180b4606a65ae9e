// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"jobconnect/internal/domain/entity"
)

// --- Input DTOs ---

// LoginInput carries the credentials and the account kind the caller claims.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// RegisterInput defines the data required to create an account of either kind.
// CompanyName and CompanyLocation are only read for employers.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	Role            string
	Phone           string
	CompanyName     string
	CompanyLocation string
}

// UpdateProfileInput holds every editable profile field. Fields that do not
// apply to the caller's kind are ignored.
type UpdateProfileInput struct {
	Name               string
	Phone              string
	Bio                string
	Skills             string
	Experience         string
	Education          string
	ResumeURL          string
	CompanyName        string
	CompanyDescription string
	CompanyWebsite     string
	CompanyLocation    string
}

// ChangePasswordInput defines the data required to rotate a known password.
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// ForgotPasswordInput starts the reset flow for an email.
type ForgotPasswordInput struct {
	Email string
}

// ResetPasswordInput redeems a reset token.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// --- Output DTOs ---

// AuthOutput is returned by login and registration.
type AuthOutput struct {
	Token     string
	ExpiresAt time.Time
	Account   *entity.Account
}

// AuthUsecase defines the identity operations the delivery layer depends on.
type AuthUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	CurrentUser(ctx context.Context, principal entity.Principal) (*entity.Account, error)
	UpdateProfile(ctx context.Context, principal entity.Principal, input *UpdateProfileInput) (*entity.Account, error)
	ChangePassword(ctx context.Context, principal entity.Principal, input *ChangePasswordInput) error
}

// PasswordResetUsecase defines the forgot/reset password flow.
type PasswordResetUsecase interface {
	// ForgotPassword mails a single-use reset link to the account holding the email.
	ForgotPassword(ctx context.Context, input *ForgotPasswordInput) error
	// ResetPassword redeems the token and replaces the bound account's password.
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
}
