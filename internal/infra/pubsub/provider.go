package pubsub

import (
	"context"
	"log/slog"
	"net/url"

	"jobconnect/config"
	"jobconnect/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// logPublisher stands in for a broker on developer machines only. The raw
// reset token is never written; use the local provider with the mail worker
// to receive a working link.
type logPublisher struct {
	logger *slog.Logger
}

func (p *logPublisher) PublishPasswordResetEvent(ctx context.Context, event *service.PasswordResetEvent) error {
	p.logger.InfoContext(ctx, "[LogPubSub] Password reset mail not dispatched, no broker configured",
		slog.String("message_id", event.MessageID),
		slog.String("to", event.To),
		slog.String("reset_url", redactResetURL(event.ResetURL)),
	)

	return nil
}

// redactResetURL blanks the token query parameter of a reset link.
func redactResetURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	query := u.Query()
	if query.Has("token") {
		query.Set("token", "REDACTED")
		u.RawQuery = query.Encode()
	}

	return u.String()
}

func (p *logPublisher) Close() error {
	return nil
}

// eventAttributes are the routing and tracing attributes attached to every broker message.
func eventAttributes(event *service.PasswordResetEvent) map[string]string {
	attributes := map[string]string{
		"message_id": event.MessageID,
		"kind":       "password_reset",
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher creates an EventPublisher based on configuration
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		// Outside local development a missing broker would turn every reset
		// request into a silent success.
		if params.Config.Env.Env != config.EnvLocal {
			return nil, errors.Errorf("pubsub provider is required in env %q", params.Config.Env.Env)
		}
		logger.Warn("PubSub not configured, reset mail will be logged and dropped")

		return &logPublisher{logger: logger}, nil
	}

	var (
		publisher service.EventPublisher
		err       error
	)

	switch cfg.Provider {
	case config.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		publisher = NewLocalHTTPPublisher(cfg.LocalEndpoint, cfg.PushSecret, logger)

	case config.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		publisher, err = NewGooglePubSubPublisher(params.Ctx, cfg.ProjectID, cfg.TopicID, logger)

	case config.PubSubProviderNATS:
		if cfg.NATSURL == "" {
			return nil, errors.New("NATS URL is required for nats provider")
		}
		publisher, err = NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing EventPublisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEventPublisher),
)
