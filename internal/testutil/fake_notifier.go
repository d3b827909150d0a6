package testutil

import (
	"context"
	"sync"

	"github.com/recouphq/recoup/internal/domain/notification"
	"github.com/recouphq/recoup/internal/types"
)

// SentNotification records one Send call on the fake dispatcher.
type SentNotification struct {
	UserID     string
	TemplateID string
	Payload    notification.Payload
	Channel    types.NotificationChannel
}

// FakeNotifier implements notification.Dispatcher and records every send.
type FakeNotifier struct {
	mu   sync.Mutex
	sent []SentNotification

	// SendErr, when set, is returned by Send to simulate dispatch failure.
	SendErr error
}

// NewFakeNotifier creates a new fake notification dispatcher
func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (n *FakeNotifier) Send(ctx context.Context, userID string, templateID string, payload notification.Payload, channel types.NotificationChannel) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, SentNotification{
		UserID:     userID,
		TemplateID: templateID,
		Payload:    payload,
		Channel:    channel,
	})
	return n.SendErr
}

// Sent returns a copy of the recorded notifications in send order.
func (n *FakeNotifier) Sent() []SentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]SentNotification, len(n.sent))
	copy(out, n.sent)
	return out
}

// LastSent returns the most recent notification, or nil when none were sent.
func (n *FakeNotifier) LastSent() *SentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.sent) == 0 {
		return nil
	}
	last := n.sent[len(n.sent)-1]
	return &last
}

// Clear resets recorded notifications.
func (n *FakeNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
	n.SendErr = nil
}
