// Package notification turns password reset links into mail requests on the event bus.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobconnect/config"
	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"
	"go.uber.org/fx"
)

const fallbackGreetingName = "there"

// Params defines the required parameters
type Params struct {
	fx.In

	Config    *config.Config
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

type resetNotifier struct {
	publisher  service.EventPublisher
	subject    string
	tokenTTL   time.Duration
	maxRetries uint64
	baseDelay  time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewResetNotifier returns a ResetNotifier that publishes through the configured event bus.
func NewResetNotifier(params Params) service.ResetNotifier {
	n := &resetNotifier{
		publisher: params.Publisher,
		logger:    params.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if cfg := params.Config.PasswordReset; cfg != nil {
		n.subject = cfg.Subject
		n.tokenTTL = cfg.TokenTTL
	}
	if cfg := params.Config.Notification; cfg != nil {
		n.maxRetries = cfg.MaxRetries
		n.baseDelay = cfg.RetryBaseDelay
	}

	return n
}

// SendPasswordResetMessage publishes the mail request, retrying transient
// publisher failures with exponential backoff. The last failure is returned.
func (n *resetNotifier) SendPasswordResetMessage(ctx context.Context, toEmail, resetURL, displayName string) error {
	event := &service.PasswordResetEvent{
		RequestID:   deliverycontext.GetRequestIDFromContext(ctx),
		MessageID:   uuid.NewString(),
		To:          toEmail,
		DisplayName: displayName,
		Subject:     n.subject,
		Body:        n.composeBody(resetURL, displayName),
		ResetURL:    resetURL,
		CreatedAt:   n.now(),
	}

	backoff := retry.WithMaxRetries(n.maxRetries, retry.NewExponential(n.retryBase()))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := n.publisher.PublishPasswordResetEvent(ctx, event); err != nil {
			n.logger.WarnContext(ctx, "Password reset mail publish failed",
				slog.String("message_id", event.MessageID),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)

			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "password reset mail not handed off after %d attempts", attempt)
	}

	return nil
}

func (n *resetNotifier) retryBase() time.Duration {
	if n.baseDelay <= 0 {
		return time.Millisecond
	}

	return n.baseDelay
}

func (n *resetNotifier) composeBody(resetURL, displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = fallbackGreetingName
	}

	minutes := int(n.tokenTTL / time.Minute)
	if minutes <= 0 {
		minutes = 60
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	b.WriteString("We received a request to reset the password of your JobConnect account.\n")
	b.WriteString("Open the link below to choose a new password:\n\n")
	fmt.Fprintf(&b, "%s\n\n", resetURL)
	fmt.Fprintf(&b, "The link stays active for the next %d minutes and can be used once.\n", minutes)
	b.WriteString("If you did not ask for this, you can ignore this message.\n")

	return b.String()
}
