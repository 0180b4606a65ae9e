// Package handler contains the push endpoint of the mail worker.
package handler

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"jobconnect/config"
	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/domain/service"
	"jobconnect/internal/errors"
	"jobconnect/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// TokenValidator checks a Google-signed OIDC token against an audience.
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler turns password reset events pushed by Pub/Sub into mail.
type PushHandler struct {
	verifyPushAuth bool
	pushSecret     string
	validateToken  TokenValidator
	logger         *slog.Logger
	mailSender     service.MailSender
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config     *config.Config
	Logger     *slog.Logger
	MailSender service.MailSender
}

// NewPushHandler creates a new Pub/Sub push handler. Outside local
// development the endpoint relays arbitrary mail, so it refuses to start
// unless Google OIDC verification or a shared push secret is configured.
func NewPushHandler(params PushHandlerParams) (*PushHandler, error) {
	cfg := params.Config

	// Only Google push subscriptions attach an OIDC token
	verifyPushAuth := cfg.Mail != nil && cfg.Mail.VerifyPushAuth &&
		cfg.PubSub != nil && cfg.PubSub.Provider == config.PubSubProviderGoogle

	var pushSecret string
	if cfg.PubSub != nil {
		pushSecret = cfg.PubSub.PushSecret
	}

	if !verifyPushAuth && pushSecret == "" && cfg.Env.Env != config.EnvLocal {
		return nil, errors.Errorf("push endpoint needs mail.verifyPushAuth or pubsub.pushSecret in env %q", cfg.Env.Env)
	}

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		pushSecret:     pushSecret,
		validateToken:  idtoken.Validate,
		logger:         params.Logger,
		mailSender:     params.MailSender,
	}, nil
}

// HandlePush handles incoming Pub/Sub push messages.
// Pub/Sub redelivers on any non-2xx answer, so only transient failures return 503.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	if h.pushSecret != "" {
		given := c.Request().Header.Get(pubsub.HeaderPushSecret)
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.pushSecret)) != 1 {
			h.logger.Warn("[Worker] Push secret mismatch")

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg pubsub.PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.PasswordResetEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse password reset event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Keep the request_id of the API call that asked for the reset
	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	if strings.TrimSpace(event.To) == "" {
		reqLogger.Error("[Worker] Dropping password reset event without recipient",
			slog.String("message_id", event.MessageID),
		)

		return c.NoContent(http.StatusOK)
	}

	err = h.mailSender.Send(ctx, &service.MailMessage{
		To:      event.To,
		Subject: event.Subject,
		Body:    event.Body,
	})
	if err != nil {
		retryable := !errors.Is(err, service.ErrMailRejected)
		reqLogger.Error("[Worker] Failed to send password reset mail",
			slog.String("message_id", event.MessageID),
			slog.Any("error", err),
			slog.Bool("retryable", retryable),
		)
		if retryable {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Password reset mail sent",
		slog.String("message_id", event.MessageID),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes, event, or generates a new one
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *pubsub.PushMessage, event *service.PasswordResetEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	// Set by RequestIDMiddleware from the X-Request-Id header
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken verifies the OIDC token Google attaches to push requests.
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return errors.New("invalid authorization header format")
	}

	// The audience is the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := scheme + "://" + req.Host + req.URL.Path

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
