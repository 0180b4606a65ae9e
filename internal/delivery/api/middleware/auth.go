package middleware

import (
	"log/slog"
	"strings"

	"jobconnect/internal/authz"
	"jobconnect/internal/delivery/api/response"
	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/domain/entity"
	"jobconnect/internal/domain/service"
	"jobconnect/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenSvc service.TokenService
	Policy   *authz.Policy
	Metrics  *metrics.AuthMetrics `optional:"true"`
	Logger   *slog.Logger
}

// AuthMiddleware attaches the bearer principal to the request and enforces the route policy.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	policy   *authz.Policy
	metrics  *metrics.AuthMetrics
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: params.TokenSvc,
		policy:   params.Policy,
		metrics:  params.Metrics,
		logger:   params.Logger,
	}
}

// Authorize runs for every request. A missing or unusable token leaves the
// request anonymous; the policy then decides whether anonymous is enough.
func (m *AuthMiddleware) Authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		principal := m.authenticate(c)
		if principal != nil {
			deliverycontext.SetPrincipal(c, principal)
			reqLogger := deliverycontext.GetLoggerOrDefault(req.Context(), m.logger).With(
				slog.String("role", principal.Role.String()),
				slog.Int64("accountID", principal.AccountID),
			)
			req = req.WithContext(deliverycontext.WithLogger(req.Context(), reqLogger))
			c.SetRequest(req)
		}

		decision := m.policy.Decide(req.Method, req.URL.Path, principal)
		m.metrics.RecordAuthzDecision(decision.String())

		switch decision {
		case authz.Allow:
			return next(c)
		case authz.DenyForbidden:
			return response.Forbidden(c)
		default:
			return response.Unauthenticated(c)
		}
	}
}

// authenticate returns the principal carried by a valid bearer token, or nil.
func (m *AuthMiddleware) authenticate(c echo.Context) *entity.Principal {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil
	}

	raw, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	claims, err := m.tokenSvc.Verify(strings.TrimSpace(raw))
	if err != nil {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
			Debug("Bearer token rejected", slog.Any("error", err))

		return nil
	}

	principal := claims.Principal()

	return &principal
}
