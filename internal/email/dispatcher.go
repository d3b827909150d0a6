package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/recouphq/recoup/internal/domain/notification"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/types"
)

// payloadKeyRecipient is the payload key carrying the recipient address.
// The dunning service sets it from the subscription record.
const payloadKeyRecipient = "customer_email"

// Dispatcher implements notification.Dispatcher over email.
type Dispatcher struct {
	client *EmailClient
	logger *logger.Logger
}

// NewDispatcher creates a new email notification dispatcher
func NewDispatcher(client *EmailClient, log *logger.Logger) notification.Dispatcher {
	return &Dispatcher{
		client: client,
		logger: log,
	}
}

// Send renders the template for templateID with the payload and emails it to
// the recipient found in the payload.
func (d *Dispatcher) Send(ctx context.Context, userID string, templateID string, payload notification.Payload, channel types.NotificationChannel) error {
	if channel != types.NotificationChannelEmail {
		return ierr.NewErrorf("unsupported notification channel: %s", channel).
			WithHint("Only the email channel is supported").
			Mark(ierr.ErrValidation)
	}

	if !d.client.IsEnabled() {
		d.logger.Warnw("email client is disabled, skipping notification",
			"user_id", userID,
			"template_id", templateID)
		return nil
	}

	toAddress, _ := payload[payloadKeyRecipient].(string)
	if toAddress == "" {
		return ierr.NewError("notification payload has no recipient address").
			WithHint("Payload must carry the customer email").
			WithReportableDetails(map[string]interface{}{
				"user_id":     userID,
				"template_id": templateID,
			}).
			Mark(ierr.ErrValidation)
	}

	htmlBody, err := d.renderTemplate(templateID, payload)
	if err != nil {
		return err
	}

	subject, ok := emailSubjects[templateID]
	if !ok {
		subject = "Notification from Recoup"
	}

	messageID, err := d.client.SendEmail(ctx, d.client.GetFromAddress(), toAddress, subject, htmlBody, "")
	if err != nil {
		return err
	}

	d.logger.Infow("notification email sent",
		"message_id", messageID,
		"user_id", userID,
		"template_id", templateID)

	return nil
}

func (d *Dispatcher) renderTemplate(templateID string, data map[string]interface{}) (string, error) {
	content, exists := emailTemplates[templateID]
	if !exists {
		return "", ierr.NewErrorf("template not found: %s", templateID).
			WithHint("Unknown notification template").
			Mark(ierr.ErrNotFound)
	}

	tmpl, err := template.New(templateID).Parse(content)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint(fmt.Sprintf("Failed to parse template %s", templateID)).
			Mark(ierr.ErrInternal)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", ierr.WithError(err).
			WithHint(fmt.Sprintf("Failed to render template %s", templateID)).
			Mark(ierr.ErrInternal)
	}

	return buf.String(), nil
}
