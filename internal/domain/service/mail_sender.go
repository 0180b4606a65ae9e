package service

import (
	"context"
	"errors"
)

// ErrMailRejected marks a message that can never be sent, so retrying is pointless.
var ErrMailRejected = errors.New("mail rejected")

// MailMessage is a plain-text mail ready to be sent.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// MailSender delivers mail on behalf of the mail worker.
type MailSender interface {
	// Send returns an error wrapping ErrMailRejected for messages that are malformed.
	// Any other error is transient.
	Send(ctx context.Context, msg *MailMessage) error
}
