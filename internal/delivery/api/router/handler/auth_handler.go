// Package handler contains the echo handlers of the public API.
package handler

import (
	"log/slog"
	"net/http"

	"jobconnect/internal/delivery/api/response"
	deliverycontext "jobconnect/internal/delivery/context"
	domainerrors "jobconnect/internal/domain/errors"
	"jobconnect/internal/errors"
	"jobconnect/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Messages of the endpoints that only acknowledge an action.
const (
	MsgForgotPasswordAccepted = "Password reset instructions sent if the email exists."
	MsgPasswordReset          = "Password updated successfully"
	MsgPasswordChanged        = "Password changed successfully"
	MsgAuthAPIWorking         = "Auth API is working"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC  usecase.AuthUsecase
	ResetUC usecase.PasswordResetUsecase
	Logger  *slog.Logger
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	authUC  usecase.AuthUsecase
	resetUC usecase.PasswordResetUsecase
	logger  *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:  params.AuthUC,
		resetUC: params.ResetUC,
		logger:  params.Logger,
	}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Role            string `json:"role" validate:"required"`
	Phone           string `json:"phone"`
	CompanyName     string `json:"companyName"`
	CompanyLocation string `json:"companyLocation"`
}

// UpdateProfileRequest is the body of PUT /api/auth/profile. It replaces every editable field.
type UpdateProfileRequest struct {
	Name               string `json:"name" validate:"required"`
	Phone              string `json:"phone"`
	Bio                string `json:"bio"`
	Skills             string `json:"skills"`
	Experience         string `json:"experience"`
	Education          string `json:"education"`
	ResumeURL          string `json:"resumeUrl" validate:"omitempty,url"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	CompanyWebsite     string `json:"companyWebsite" validate:"omitempty,url"`
	CompanyLocation    string `json:"companyLocation"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newAuthPayload(out))
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Role:            req.Role,
		Phone:           req.Phone,
		CompanyName:     req.CompanyName,
		CompanyLocation: req.CompanyLocation,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newAuthPayload(out))
}

// GetProfile handles GET /api/auth/profile
func (h *AuthHandler) GetProfile(c echo.Context) error {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return errors.WithStack(domainerrors.ErrUnauthenticated)
	}

	account, err := h.authUC.CurrentUser(c.Request().Context(), *principal)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newAccountPayload(account))
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return errors.WithStack(domainerrors.ErrUnauthenticated)
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.authUC.UpdateProfile(c.Request().Context(), *principal, &usecase.UpdateProfileInput{
		Name:               req.Name,
		Phone:              req.Phone,
		Bio:                req.Bio,
		Skills:             req.Skills,
		Experience:         req.Experience,
		Education:          req.Education,
		ResumeURL:          req.ResumeURL,
		CompanyName:        req.CompanyName,
		CompanyDescription: req.CompanyDescription,
		CompanyWebsite:     req.CompanyWebsite,
		CompanyLocation:    req.CompanyLocation,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newAccountPayload(account))
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return errors.WithStack(domainerrors.ErrUnauthenticated)
	}

	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.ChangePassword(c.Request().Context(), *principal, &usecase.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return err
	}

	return response.Message(c, http.StatusOK, MsgPasswordChanged)
}

// ForgotPassword handles POST /api/auth/forgot-password.
// Unknown emails get the same answer as known ones; only a failed hand-off is reported.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	err := h.resetUC.ForgotPassword(ctx, &usecase.ForgotPasswordInput{Email: req.Email})
	switch {
	case err == nil:
	case errors.Is(err, domainerrors.ErrAccountNotFound):
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Info("Password reset requested for unknown email")
	default:
		return err
	}

	return response.Message(c, http.StatusOK, MsgForgotPasswordAccepted)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.resetUC.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.Password,
	}); err != nil {
		return err
	}

	return response.Message(c, http.StatusOK, MsgPasswordReset)
}

// Validate handles GET /api/auth/validate. The route is public so that an
// anonymous check gets {valid:false} instead of the error envelope.
func (h *AuthHandler) Validate(c echo.Context) error {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ValidatePayload{Valid: false})
	}

	account, err := h.authUC.CurrentUser(c.Request().Context(), *principal)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return c.JSON(http.StatusUnauthorized, ValidatePayload{Valid: false})
		}

		return err
	}

	return c.JSON(http.StatusOK, ValidatePayload{
		Valid: true,
		Email: account.Email,
		Role:  account.Role,
		Name:  account.Name,
	})
}

// Ping handles GET /api/auth/test
func (h *AuthHandler) Ping(c echo.Context) error {
	return response.Message(c, http.StatusOK, MsgAuthAPIWorking)
}

// bindAndValidate decodes the body into req and runs its validation tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("request body could not be decoded"))
	}

	return errors.WithStack(c.Validate(req))
}
