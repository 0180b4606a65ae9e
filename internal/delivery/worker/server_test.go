package worker

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobconnect/config"
	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/delivery/worker/handler"
	"jobconnect/internal/domain/service"
	"jobconnect/internal/infra/pubsub"
	mockService "jobconnect/internal/mocks/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPushHandler(t *testing.T, cfg *config.Config, logger *slog.Logger, sender service.MailSender) *handler.PushHandler {
	t.Helper()

	h, err := handler.NewPushHandler(handler.PushHandlerParams{
		Config:     cfg,
		Logger:     logger,
		MailSender: sender,
	})
	require.NoError(t, err)

	return h
}

// The local publisher used by the API in development must be understood by the worker as is.
func TestLocalPublisherToWorker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{PubSub: &config.PubSubConfig{Provider: config.PubSubProviderLocal, PushSecret: "s3cret"}}
	cfg.Env.Env = "staging"
	sender := mockService.NewMockMailSender(t)

	e := NewEcho(ServerParams{
		Cfg:         cfg,
		Logger:      logger,
		PushHandler: newPushHandler(t, cfg, logger, sender),
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	sender.EXPECT().
		Send(mock.Anything, mock.MatchedBy(func(msg *service.MailMessage) bool {
			return msg.To == "a@x.com" && msg.Subject == "JobConnect password reset requested"
		})).
		Run(func(ctx context.Context, _ *service.MailMessage) {
			assert.Equal(t, "req-42", deliverycontext.GetRequestIDFromContext(ctx))
		}).
		Return(nil).
		Once()

	publisher := pubsub.NewLocalHTTPPublisher(srv.URL+"/push", "s3cret", logger)
	err := publisher.PublishPasswordResetEvent(context.Background(), &service.PasswordResetEvent{
		RequestID: "req-42",
		MessageID: "m-1",
		To:        "a@x.com",
		Subject:   "JobConnect password reset requested",
		Body:      "Hi Ann",
	})

	require.NoError(t, err)
}

func TestWorkerHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Env.Env = config.EnvLocal
	e := NewEcho(ServerParams{
		Cfg:         cfg,
		Logger:      logger,
		PushHandler: newPushHandler(t, cfg, logger, nil),
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
