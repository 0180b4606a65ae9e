package service

import "context"

// ResetNotifier hands a password reset link to whatever delivers mail.
type ResetNotifier interface {
	// SendPasswordResetMessage must return an error when the message could not
	// be handed off; it never reports success for a dropped message.
	SendPasswordResetMessage(ctx context.Context, toEmail, resetURL, displayName string) error
}
