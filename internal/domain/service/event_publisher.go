package service

import (
	"context"
	"time"
)

// PasswordResetEvent is the mail request consumed by the notification worker.
type PasswordResetEvent struct {
	RequestID   string    `json:"request_id,omitempty"` // For distributed tracing
	MessageID   string    `json:"message_id"`
	To          string    `json:"to"`
	DisplayName string    `json:"display_name"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	ResetURL    string    `json:"reset_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishPasswordResetEvent publishes a reset mail request for async delivery
	PublishPasswordResetEvent(ctx context.Context, event *PasswordResetEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
