package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/recouphq/recoup/internal/config"
	ierr "github.com/recouphq/recoup/internal/errors"
)

// EmailClient wraps the Resend API client.
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
}

// NewEmailClient creates a new email client from configuration. A disabled
// client is valid; sends become no-ops reported to the caller.
func NewEmailClient(cfg *config.Configuration) *EmailClient {
	c := &EmailClient{
		enabled:     cfg.Email.Enabled && cfg.Email.APIKey != "",
		fromAddress: cfg.Email.FromAddress,
	}
	if c.enabled {
		c.client = resend.NewClient(cfg.Email.APIKey)
	}
	return c
}

// IsEnabled reports whether the client can actually send email.
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the configured sender address.
func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail sends one email and returns the provider message ID.
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, html, text string) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			WithHint("Enable email and configure an API key to send email").
			Mark(ierr.ErrInvalidOperation)
	}

	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			Mark(ierr.ErrInternal)
	}

	return sent.Id, nil
}
