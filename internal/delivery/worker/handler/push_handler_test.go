package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobconnect/config"
	"jobconnect/internal/domain/service"
	"jobconnect/internal/errors"
	"jobconnect/internal/infra/pubsub"
	mockService "jobconnect/internal/mocks/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func newHandler(t *testing.T, verify bool) (*PushHandler, *mockService.MockMailSender) {
	t.Helper()

	cfg := &config.Config{
		PubSub: &config.PubSubConfig{Provider: config.PubSubProviderGoogle},
		Mail:   &config.MailConfig{VerifyPushAuth: verify},
	}
	cfg.Env.Env = config.EnvLocal

	return newHandlerWithConfig(t, cfg)
}

func newHandlerWithConfig(t *testing.T, cfg *config.Config) (*PushHandler, *mockService.MockMailSender) {
	t.Helper()

	sender := mockService.NewMockMailSender(t)
	h, err := NewPushHandler(PushHandlerParams{
		Config:     cfg,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		MailSender: sender,
	})
	require.NoError(t, err)

	return h, sender
}

func pushBody(t *testing.T, event *service.PasswordResetEvent) string {
	t.Helper()

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var msg pubsub.PushMessage
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.MessageID = event.MessageID
	msg.Message.Attributes = map[string]string{"request_id": "req-from-api"}

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return string(body)
}

func servePush(h *PushHandler, body, authorization string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	_ = h.HandlePush(e.NewContext(req, rec))

	return rec
}

func resetEvent() *service.PasswordResetEvent {
	return &service.PasswordResetEvent{
		MessageID: "m-1",
		To:        "a@x.com",
		Subject:   "JobConnect password reset requested",
		Body:      "Hi Ann, http://localhost:3000/reset-password?token=abc",
	}
}

func TestHandlePush_SendsMail(t *testing.T) {
	h, sender := newHandler(t, false)
	sender.EXPECT().
		Send(mock.Anything, &service.MailMessage{
			To:      "a@x.com",
			Subject: "JobConnect password reset requested",
			Body:    "Hi Ann, http://localhost:3000/reset-password?token=abc",
		}).
		Return(nil).
		Once()

	rec := servePush(h, pushBody(t, resetEvent()), "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlePush_FailureClassification(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		want    int
	}{
		{name: "transient failure asks for redelivery", sendErr: errors.New("connection reset"), want: http.StatusServiceUnavailable},
		{name: "rejected mail is acknowledged", sendErr: errors.Wrap(service.ErrMailRejected, "bad header"), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sender := newHandler(t, false)
			sender.EXPECT().Send(mock.Anything, mock.Anything).Return(tt.sendErr).Once()

			rec := servePush(h, pushBody(t, resetEvent()), "")

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandlePush_MalformedMessages(t *testing.T) {
	t.Run("invalid base64", func(t *testing.T) {
		h, _ := newHandler(t, false)

		rec := servePush(h, `{"message":{"data":"%%%"}}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing recipient is dropped", func(t *testing.T) {
		h, _ := newHandler(t, false)
		event := resetEvent()
		event.To = " "

		rec := servePush(h, pushBody(t, event), "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandlePush_VerifiesGoogleToken(t *testing.T) {
	validator := func(issuer string, err error) TokenValidator {
		return func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			if err != nil {
				return nil, err
			}
			assert.Equal(t, "signed-oidc", token)
			assert.Equal(t, "http://example.com/push", audience)

			return &idtoken.Payload{Issuer: issuer, Claims: map[string]any{"email_verified": true}}, nil
		}
	}

	t.Run("missing header", func(t *testing.T) {
		h, _ := newHandler(t, true)

		rec := servePush(h, pushBody(t, resetEvent()), "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		h, _ := newHandler(t, true)
		h.validateToken = validator("https://evil.example.com", nil)

		rec := servePush(h, pushBody(t, resetEvent()), "Bearer signed-oidc")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid signature", func(t *testing.T) {
		h, _ := newHandler(t, true)
		h.validateToken = validator("", errors.New("bad signature"))

		rec := servePush(h, pushBody(t, resetEvent()), "Bearer signed-oidc")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("google issuer", func(t *testing.T) {
		h, sender := newHandler(t, true)
		h.validateToken = validator("https://accounts.google.com", nil)
		sender.EXPECT().Send(mock.Anything, mock.Anything).Return(nil).Once()

		rec := servePush(h, pushBody(t, resetEvent()), "Bearer signed-oidc")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNewPushHandler_RequiresAuthOutsideLocal(t *testing.T) {
	tests := []struct {
		name    string
		pubsub  *config.PubSubConfig
		mail    *config.MailConfig
		wantErr bool
	}{
		{name: "no auth", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderNATS}, wantErr: true},
		{name: "oidc needs google provider", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderNATS}, mail: &config.MailConfig{VerifyPushAuth: true}, wantErr: true},
		{name: "google oidc", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderGoogle}, mail: &config.MailConfig{VerifyPushAuth: true}},
		{name: "shared secret", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderLocal, PushSecret: "s3cret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{PubSub: tt.pubsub, Mail: tt.mail}
			cfg.Env.Env = "production"

			_, err := NewPushHandler(PushHandlerParams{
				Config: cfg,
				Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
			if tt.wantErr {
				assert.ErrorContains(t, err, "pubsub.pushSecret")

				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHandlePush_ChecksPushSecret(t *testing.T) {
	cfg := &config.Config{PubSub: &config.PubSubConfig{Provider: config.PubSubProviderLocal, PushSecret: "s3cret"}}
	cfg.Env.Env = "production"

	serve := func(h *PushHandler, secret string) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(pushBody(t, resetEvent())))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if secret != "" {
			req.Header.Set(pubsub.HeaderPushSecret, secret)
		}
		rec := httptest.NewRecorder()
		_ = h.HandlePush(e.NewContext(req, rec))

		return rec
	}

	t.Run("missing", func(t *testing.T) {
		h, _ := newHandlerWithConfig(t, cfg)

		assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	})

	t.Run("wrong", func(t *testing.T) {
		h, _ := newHandlerWithConfig(t, cfg)

		assert.Equal(t, http.StatusUnauthorized, serve(h, "guess").Code)
	})

	t.Run("match", func(t *testing.T) {
		h, sender := newHandlerWithConfig(t, cfg)
		sender.EXPECT().Send(mock.Anything, mock.Anything).Return(nil).Once()

		assert.Equal(t, http.StatusOK, serve(h, "s3cret").Code)
	})
}
