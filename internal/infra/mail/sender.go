// Package mail sends the plain-text messages produced by the mail worker.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"jobconnect/config"
	deliverycontext "jobconnect/internal/delivery/context"
	"jobconnect/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ErrHeaderInjection rejects recipients or subjects that would break out of their header line.
var ErrHeaderInjection = fmt.Errorf("%w: header contains a line break", service.ErrMailRejected)

// defaultSMTPTimeout bounds one relay conversation when ctx has no deadline.
const defaultSMTPTimeout = 30 * time.Second

// sendFunc is smtp.SendMail with a context bounding the whole conversation.
type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpSender struct {
	addr   string
	auth   smtp.Auth
	from   string
	send   sendFunc
	now    func() time.Time
	logger *slog.Logger
}

// NewSMTPSender sends through an SMTP relay using PLAIN auth when a username is set.
func NewSMTPSender(cfg *config.MailConfig, logger *slog.Logger) service.MailSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}

	return &smtpSender{
		addr:   net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth:   auth,
		from:   cfg.From,
		send:   sendMail,
		now:    time.Now,
		logger: logger,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg *service.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	raw, err := s.compose(msg)
	if err != nil {
		return err
	}

	if err := s.send(ctx, s.addr, s.auth, s.from, []string{msg.To}, raw); err != nil {
		return errors.Wrapf(err, "smtp send via %s", s.addr)
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("[Mail] Message sent",
		slog.String("relay", s.addr),
		slog.String("subject", msg.Subject),
	)

	return nil
}

// sendMail follows smtp.SendMail but dials through ctx and puts a deadline on
// the connection, so a stalled relay cannot hold the push request forever.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSMTPTimeout)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()

		return errors.WithStack(err)
	}

	host, _, _ := net.SplitHostPort(addr)
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()

		return errors.WithStack(err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			return errors.WithStack(err)
		}
	}
	if a != nil {
		if ok, _ := client.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := client.Auth(a); err != nil {
			return errors.WithStack(err)
		}
	}
	if err := client.Mail(from); err != nil {
		return errors.WithStack(err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return errors.WithStack(err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := w.Write(msg); err != nil {
		return errors.WithStack(err)
	}
	if err := w.Close(); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(client.Quit())
}

func (s *smtpSender) compose(msg *service.MailMessage) ([]byte, error) {
	for _, header := range []string{msg.To, msg.Subject} {
		if strings.ContainsAny(header, "\r\n") {
			return nil, errors.WithStack(ErrHeaderInjection)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("From: " + s.from + "\r\n")
	buf.WriteString("To: " + msg.To + "\r\n")
	buf.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	buf.WriteString("Date: " + s.now().Format(time.RFC1123Z) + "\r\n")
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))

	return buf.Bytes(), nil
}

// logSender writes mail to the log. It is used when no SMTP relay is configured.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender returns a MailSender that only logs.
func NewLogSender(logger *slog.Logger) service.MailSender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, msg *service.MailMessage) error {
	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("[Mail] No SMTP relay configured, logging message",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)

	return nil
}

// Params holds dependencies for the mail sender, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewMailSender picks the SMTP sender when a relay is configured.
func NewMailSender(params Params) service.MailSender {
	if params.Config.Mail == nil || params.Config.Mail.SMTPHost == "" {
		params.Logger.Warn("[Mail] mail.smtpHost not set, reset mail will only be logged")

		return NewLogSender(params.Logger)
	}

	return NewSMTPSender(params.Config.Mail, params.Logger)
}
