package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"jobconnect/internal/domain/service"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

const defaultNATSSubject = "jobconnect.mail.password_reset"

// natsPublisher implements EventPublisher on a NATS JetStream stream.
type natsPublisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to url and publishes to subject through JetStream.
// The stream covering subject must already exist.
func NewNATSPublisher(url, subject string, logger *slog.Logger, opts ...nats.Option) (service.EventPublisher, error) {
	if subject == "" {
		subject = defaultNATSSubject
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to NATS")
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()

		return nil, errors.Wrap(err, "failed to open JetStream context")
	}

	logger.Info("NATS JetStream publisher initialized",
		slog.String("url", url),
		slog.String("subject", subject),
	)

	return &natsPublisher{conn: nc, js: js, subject: subject, logger: logger}, nil
}

// PublishPasswordResetEvent returns once the stream has acknowledged the message.
func (p *natsPublisher) PublishPasswordResetEvent(ctx context.Context, event *service.PasswordResetEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	for k, v := range eventAttributes(event) {
		msg.Header.Set(k, v)
	}
	// JetStream drops a second publish with the same id inside its duplicate window.
	msg.Header.Set(nats.MsgIdHdr, event.MessageID)

	ack, err := p.js.PublishMsg(msg, nats.Context(ctx))
	if err != nil {
		return errors.WithStack(err)
	}

	p.logger.Info("[NATS] Password reset event published",
		slog.String("message_id", event.MessageID),
		slog.String("stream", ack.Stream),
		slog.Uint64("sequence", ack.Sequence),
	)

	return nil
}

// Close drains in-flight messages before closing the connection.
func (p *natsPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()

		return errors.WithStack(err)
	}

	return nil
}
