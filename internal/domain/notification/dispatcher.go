package notification

import (
	"context"

	"github.com/recouphq/recoup/internal/types"
)

// Payload carries template data for a notification.
type Payload map[string]interface{}

// Dispatcher sends customer notifications. Fire and forget: callers swallow
// and log dispatch errors, a failed notification must never abort a payment
// retry.
type Dispatcher interface {
	Send(ctx context.Context, userID string, templateID string, payload Payload, channel types.NotificationChannel) error
}
