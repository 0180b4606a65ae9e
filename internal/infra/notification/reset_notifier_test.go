package notification

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"jobconnect/config"
	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/domain/service"
	mockSvc "jobconnect/internal/mocks/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T, retries uint64) (service.ResetNotifier, *mockSvc.MockEventPublisher) {
	publisher := mockSvc.NewMockEventPublisher(t)
	n := NewResetNotifier(Params{
		Config: &config.Config{
			PasswordReset: &config.PasswordResetConfig{Subject: "Reset", TokenTTL: time.Hour},
			Notification:  &config.NotificationConfig{MaxRetries: retries, RetryBaseDelay: time.Millisecond},
		},
		Publisher: publisher,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return n, publisher
}

func TestResetNotifier_PublishesEvent(t *testing.T) {
	n, publisher := newTestNotifier(t, 0)
	ctx := deliverycontext.WithRequestID(context.Background(), "req-42")
	url := "http://localhost:3000/reset-password?token=abc"

	var got *service.PasswordResetEvent
	publisher.EXPECT().
		PublishPasswordResetEvent(mock.Anything, mock.AnythingOfType("*service.PasswordResetEvent")).
		Run(func(_ context.Context, event *service.PasswordResetEvent) { got = event }).
		Return(nil).
		Once()

	require.NoError(t, n.SendPasswordResetMessage(ctx, "jane@example.com", url, "Jane"))
	require.NotNil(t, got)
	assert.Equal(t, "req-42", got.RequestID)
	assert.NotEmpty(t, got.MessageID)
	assert.Equal(t, "jane@example.com", got.To)
	assert.Equal(t, "Reset", got.Subject)
	assert.Equal(t, url, got.ResetURL)
	assert.Contains(t, got.Body, "Hi Jane,")
	assert.Contains(t, got.Body, url)
	assert.Contains(t, got.Body, "next 60 minutes")
}

func TestResetNotifier_GreetsAnonymousHolder(t *testing.T) {
	n, publisher := newTestNotifier(t, 0)

	publisher.EXPECT().
		PublishPasswordResetEvent(mock.Anything, mock.MatchedBy(func(event *service.PasswordResetEvent) bool {
			return strings.HasPrefix(event.Body, "Hi there,")
		})).
		Return(nil).
		Once()

	require.NoError(t, n.SendPasswordResetMessage(context.Background(), "x@example.com", "u", "  "))
}

func TestResetNotifier_RetriesThenSucceeds(t *testing.T) {
	n, publisher := newTestNotifier(t, 2)

	publisher.EXPECT().PublishPasswordResetEvent(mock.Anything, mock.Anything).Return(errors.New("unavailable")).Once()
	publisher.EXPECT().PublishPasswordResetEvent(mock.Anything, mock.Anything).Return(nil).Once()

	assert.NoError(t, n.SendPasswordResetMessage(context.Background(), "jane@example.com", "u", "Jane"))
}

func TestResetNotifier_ReportsExhaustedRetries(t *testing.T) {
	n, publisher := newTestNotifier(t, 2)
	boom := errors.New("broker down")

	publisher.EXPECT().PublishPasswordResetEvent(mock.Anything, mock.Anything).Return(boom).Times(3)

	err := n.SendPasswordResetMessage(context.Background(), "jane@example.com", "u", "Jane")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 3 attempts")
}
