package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobconnect/config"
	"jobconnect/internal/authz"
	apimiddleware "jobconnect/internal/delivery/api/middleware"
	"jobconnect/internal/delivery/api/response"
	"jobconnect/internal/delivery/api/router"
	"jobconnect/internal/delivery/api/router/handler"
	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/domain/entity"
	domainerrors "jobconnect/internal/domain/errors"
	"jobconnect/internal/domain/service"
	"jobconnect/internal/errors"
	"jobconnect/internal/infra/auth"
	"jobconnect/internal/infra/metrics"
	mockUsecase "jobconnect/internal/mocks/usecase"
	"jobconnect/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorInfo `json:"error"`
	Meta  *response.MetaInfo  `json:"meta"`
}

type testServer struct {
	echo     *echo.Echo
	authUC   *mockUsecase.MockAuthUsecase
	resetUC  *mockUsecase.MockPasswordResetUsecase
	tokenSvc service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Auth:    &config.AuthConfig{AccessTokenTTL: time.Hour},
		Metrics: &config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	cfg.SecretKey.Access = "handler-test-secret"
	cfg.HTTP.MaxRequestBodySize = "100KB"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokenSvc, err := auth.NewJWTService(cfg, service.NewSystemClock())
	require.NoError(t, err)

	policy, err := authz.NewDefaultPolicy()
	require.NoError(t, err)

	registry := metrics.NewRegistry()
	authUC := mockUsecase.NewMockAuthUsecase(t)
	resetUC := mockUsecase.NewMockPasswordResetUsecase(t)

	e := NewEcho(ServerParams{
		Cfg:             cfg,
		Logger:          logger,
		ErrorMiddleware: apimiddleware.NewErrorMiddleware(logger),
		RouterParams: router.RouterParams{
			AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{
				AuthUC:  authUC,
				ResetUC: resetUC,
				Logger:  logger,
			}),
			SystemHandler: handler.NewSystemHandler(),
			AuthMiddleware: apimiddleware.NewAuthMiddleware(apimiddleware.AuthMiddlewareParams{
				TokenSvc: tokenSvc,
				Policy:   policy,
				Metrics:  metrics.NewAuthMetrics(registry),
				Logger:   logger,
			}),
			Registry: registry,
			Config:   cfg,
		},
	})

	return &testServer{echo: e, authUC: authUC, resetUC: resetUC, tokenSvc: tokenSvc}
}

func (s *testServer) token(t *testing.T, principal entity.Principal) string {
	t.Helper()

	token, _, err := s.tokenSvc.Issue(principal)
	require.NoError(t, err)

	return token
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()

	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)

	return env
}

var (
	employerPrincipal  = entity.Principal{AccountID: 7, Email: "a@x.com", Role: entity.RoleEmployer}
	applicantPrincipal = entity.Principal{AccountID: 3, Email: "jo@x.com", Role: entity.RoleApplicant}
)

func acmeAccount() *entity.Account {
	account := entity.NewEmployer("Ann", "a@x.com", "", "Acme", "Berlin")
	account.ID = 7

	return account
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"status":"ok"`)
}

func TestMetricsEndpointExposesAuthzCounters(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", "", "")

	rec := s.do(http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `jobconnect_authz_decisions_total{decision="allow"}`)
}

func TestLogin(t *testing.T) {
	t.Run("returns token and account payload", func(t *testing.T) {
		s := newTestServer(t)
		expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		s.authUC.EXPECT().
			Login(mock.Anything, &usecase.LoginInput{Email: "a@x.com", Password: "secret1", Role: "EMPLOYER"}).
			Return(&usecase.AuthOutput{Token: "signed", ExpiresAt: expiresAt, Account: acmeAccount()}, nil).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/login",
			`{"email":"a@x.com","password":"secret1","role":"EMPLOYER"}`, "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var payload handler.AuthPayload
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payload))
		assert.Equal(t, "signed", payload.Token)
		assert.True(t, expiresAt.Equal(payload.ExpiresAt))
		require.NotNil(t, payload.User)
		assert.Equal(t, entity.RoleEmployer, payload.User.Role)
		assert.Equal(t, "Acme", payload.User.CompanyName)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("invalid credentials are 401 without details", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			Login(mock.Anything, mock.Anything).
			Return(nil, errors.Wrap(domainerrors.ErrInvalidCredentials.WithDetails("no such row"), "login")).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/login",
			`{"email":"a@x.com","password":"secret1","role":"APPLICANT"}`, "")

		env := requireErrorCode(t, rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")
		assert.Nil(t, env.Error.Details)
		assert.Equal(t, domainerrors.ErrInvalidCredentials.Message(), env.Error.Message)
	})

	t.Run("missing fields fail validation before the usecase", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"not-an-email","password":""}`, "")

		env := requireErrorCode(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
		details, err := json.Marshal(env.Error.Details)
		require.NoError(t, err)
		assert.Contains(t, string(details), `"field":"email"`)
		assert.Contains(t, string(details), `"field":"password"`)
		assert.Contains(t, string(details), `"field":"role"`)
	})
}

func TestRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			Register(mock.Anything, mock.MatchedBy(func(in *usecase.RegisterInput) bool {
				return in.Email == "a@x.com" && in.Role == "EMPLOYER" && in.CompanyName == "Acme"
			})).
			Return(&usecase.AuthOutput{Token: "signed", ExpiresAt: time.Now().Add(time.Hour), Account: acmeAccount()}, nil).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/register",
			`{"name":"Ann","email":"a@x.com","password":"secret1","role":"EMPLOYER","companyName":"Acme"}`, "")

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, string(decode(t, rec).Data), `"companyName":"Acme"`)
	})

	t.Run("short password", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodPost, "/api/auth/register",
			`{"name":"Ann","email":"a@x.com","password":"123","role":"APPLICANT"}`, "")

		requireErrorCode(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodPost, "/api/auth/register", `{"name":`, "")

		requireErrorCode(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	})

	t.Run("email taken", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			Register(mock.Anything, mock.Anything).
			Return(nil, errors.WithStack(domainerrors.ErrEmailTaken)).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/register",
			`{"name":"Ann","email":"a@x.com","password":"secret1","role":"APPLICANT"}`, "")

		requireErrorCode(t, rec, http.StatusConflict, "EMAIL_TAKEN")
	})
}

func TestProfile(t *testing.T) {
	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodGet, "/api/auth/profile", "", "")

		requireErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHENTICATED")
	})

	t.Run("tampered token is treated as anonymous", func(t *testing.T) {
		s := newTestServer(t)
		token := s.token(t, employerPrincipal)

		rec := s.do(http.MethodGet, "/api/auth/profile", "", token+"x")

		requireErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHENTICATED")
	})

	t.Run("returns the caller's own account", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			CurrentUser(mock.Anything, employerPrincipal).
			Return(acmeAccount(), nil).
			Once()

		rec := s.do(http.MethodGet, "/api/auth/profile", "", s.token(t, employerPrincipal))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var payload handler.AccountPayload
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payload))
		assert.Equal(t, int64(7), payload.ID)
		assert.Equal(t, "a@x.com", payload.Email)
	})

	t.Run("update forwards every field", func(t *testing.T) {
		s := newTestServer(t)
		updated := entity.NewApplicant("Jo Doe", "jo@x.com", "555")
		updated.ID = 3
		updated.Applicant.Skills = "go"
		s.authUC.EXPECT().
			UpdateProfile(mock.Anything, applicantPrincipal, &usecase.UpdateProfileInput{
				Name:   "Jo Doe",
				Phone:  "555",
				Skills: "go",
			}).
			Return(updated, nil).
			Once()

		rec := s.do(http.MethodPut, "/api/auth/profile",
			`{"name":"Jo Doe","phone":"555","skills":"go"}`, s.token(t, applicantPrincipal))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := string(decode(t, rec).Data)
		assert.Contains(t, data, `"fullName":"Jo Doe"`)
		assert.Contains(t, data, `"skills":"go"`)
		assert.NotContains(t, data, "companyName")
	})

	t.Run("employer without company name", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			UpdateProfile(mock.Anything, employerPrincipal, mock.Anything).
			Return(nil, errors.WithStack(domainerrors.ErrMissingCompanyName)).
			Once()

		rec := s.do(http.MethodPut, "/api/auth/profile", `{"name":"Ann"}`, s.token(t, employerPrincipal))

		requireErrorCode(t, rec, http.StatusBadRequest, "MISSING_COMPANY_NAME")
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("changed", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			ChangePassword(mock.Anything, applicantPrincipal, &usecase.ChangePasswordInput{OldPassword: "secret1", NewPassword: "secret2"}).
			Return(nil).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/change-password",
			`{"oldPassword":"secret1","newPassword":"secret2"}`, s.token(t, applicantPrincipal))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, string(decode(t, rec).Data), handler.MsgPasswordChanged)
	})

	t.Run("wrong old password", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			ChangePassword(mock.Anything, applicantPrincipal, mock.Anything).
			Return(errors.WithStack(domainerrors.ErrInvalidOldPassword)).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/change-password",
			`{"oldPassword":"nope","newPassword":"secret2"}`, s.token(t, applicantPrincipal))

		requireErrorCode(t, rec, http.StatusBadRequest, "INVALID_OLD_PASSWORD")
	})

	t.Run("requires a session", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodPost, "/api/auth/change-password",
			`{"oldPassword":"secret1","newPassword":"secret2"}`, "")

		requireErrorCode(t, rec, http.StatusUnauthorized, "UNAUTHENTICATED")
	})
}

func TestForgotPassword(t *testing.T) {
	const body = `{"email":"someone@x.com"}`

	t.Run("known and unknown emails get the same answer", func(t *testing.T) {
		for _, ucErr := range []error{nil, errors.WithStack(domainerrors.ErrAccountNotFound)} {
			s := newTestServer(t)
			s.resetUC.EXPECT().
				ForgotPassword(mock.Anything, &usecase.ForgotPasswordInput{Email: "someone@x.com"}).
				Return(ucErr).
				Once()

			rec := s.do(http.MethodPost, "/api/auth/forgot-password", body, "")

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t,
				`{"message":"Password reset instructions sent if the email exists."}`,
				string(decode(t, rec).Data))
		}
	})

	t.Run("delivery failure is reported", func(t *testing.T) {
		s := newTestServer(t)
		s.resetUC.EXPECT().
			ForgotPassword(mock.Anything, mock.Anything).
			Return(errors.Wrap(domainerrors.ErrDeliveryFailure, "publisher unreachable")).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/forgot-password", body, "")

		env := requireErrorCode(t, rec, http.StatusServiceUnavailable, "DELIVERY_FAILURE")
		assert.NotContains(t, env.Error.Message, "publisher")
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("redeemed", func(t *testing.T) {
		s := newTestServer(t)
		s.resetUC.EXPECT().
			ResetPassword(mock.Anything, &usecase.ResetPasswordInput{Token: "raw", NewPassword: "newpass123"}).
			Return(nil).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/reset-password", `{"token":"raw","password":"newpass123"}`, "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, string(decode(t, rec).Data), handler.MsgPasswordReset)
	})

	t.Run("invalid or expired", func(t *testing.T) {
		s := newTestServer(t)
		s.resetUC.EXPECT().
			ResetPassword(mock.Anything, mock.Anything).
			Return(errors.WithStack(domainerrors.ErrInvalidOrExpiredToken)).
			Once()

		rec := s.do(http.MethodPost, "/api/auth/reset-password", `{"token":"raw","password":"newpass123"}`, "")

		requireErrorCode(t, rec, http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN")
	})
}

func TestValidate(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(http.MethodGet, "/api/auth/validate", "", "")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"valid":false}`, rec.Body.String())
	})

	t.Run("valid session", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().CurrentUser(mock.Anything, employerPrincipal).Return(acmeAccount(), nil).Once()

		rec := s.do(http.MethodGet, "/api/auth/validate", "", s.token(t, employerPrincipal))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"valid":true,"email":"a@x.com","role":"EMPLOYER","name":"Ann"}`, rec.Body.String())
	})

	t.Run("account removed after issue", func(t *testing.T) {
		s := newTestServer(t)
		s.authUC.EXPECT().
			CurrentUser(mock.Anything, employerPrincipal).
			Return(nil, errors.WithStack(domainerrors.ErrAccountNotFound)).
			Once()

		rec := s.do(http.MethodGet, "/api/auth/validate", "", s.token(t, employerPrincipal))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"valid":false}`, rec.Body.String())
	})
}

func TestPingIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/auth/test", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), handler.MsgAuthAPIWorking)
}

func TestGateDistinguishesForbiddenFromUnauthenticated(t *testing.T) {
	s := newTestServer(t)

	anonymous := s.do(http.MethodGet, "/api/jobs/employer/mine", "", "")
	requireErrorCode(t, anonymous, http.StatusUnauthorized, "UNAUTHENTICATED")

	wrongRole := s.do(http.MethodGet, "/api/jobs/employer/mine", "", s.token(t, applicantPrincipal))
	requireErrorCode(t, wrongRole, http.StatusForbidden, "FORBIDDEN")

	// The route is not served here; reaching the router proves the gate allowed it.
	rightRole := s.do(http.MethodGet, "/api/jobs/employer/mine", "", s.token(t, employerPrincipal))
	assert.Equal(t, http.StatusNotFound, rightRole.Code)
}

func TestUnknownErrorsAreHidden(t *testing.T) {
	s := newTestServer(t)
	s.authUC.EXPECT().
		CurrentUser(mock.Anything, mock.Anything).
		Return(nil, errors.New("pq: connection refused on 10.0.0.3")).
		Once()

	rec := s.do(http.MethodGet, "/api/auth/profile", "", s.token(t, employerPrincipal))

	env := requireErrorCode(t, rec, http.StatusInternalServerError, "INTERNAL_ERROR")
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
	assert.Nil(t, env.Error.Details)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(deliverycontext.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
	env := decode(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, "req-123", env.Meta.RequestID)
}
