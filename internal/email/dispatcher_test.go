package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recouphq/recoup/internal/config"
	"github.com/recouphq/recoup/internal/domain/notification"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/logger"
	"github.com/recouphq/recoup/internal/types"
)

func newDisabledDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	cfg := config.GetDefaultConfig()
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	return &Dispatcher{client: NewEmailClient(cfg), logger: log}
}

func TestSendUnsupportedChannel(t *testing.T) {
	d := newDisabledDispatcher(t)

	err := d.Send(context.Background(), "user_1", types.TemplateDunningFirstReminder,
		notification.Payload{"customer_email": "c@example.com"}, "sms")
	assert.True(t, ierr.IsValidation(err))
}

func TestSendDisabledClientIsNoOp(t *testing.T) {
	d := newDisabledDispatcher(t)

	err := d.Send(context.Background(), "user_1", types.TemplateDunningFirstReminder,
		notification.Payload{"customer_email": "c@example.com"}, types.NotificationChannelEmail)
	assert.NoError(t, err)
}

func TestRenderTemplates(t *testing.T) {
	d := newDisabledDispatcher(t)

	payload := map[string]interface{}{
		"tier":            "pro",
		"attempt_number":  2,
		"max_attempts":    4,
		"attempt_count":   4,
		"next_retry_date": "2026-01-13T12:00:00Z",
		"suspended_at":    "2026-01-20T12:00:00Z",
	}

	for _, templateID := range []string{
		types.TemplateDunningFirstReminder,
		types.TemplateDunningSecondReminder,
		types.TemplateDunningFinalWarning,
		types.TemplateDunningSuspended,
		types.TemplatePaymentSuccess,
	} {
		html, err := d.renderTemplate(templateID, payload)
		require.NoError(t, err, templateID)
		assert.Contains(t, html, "Recoup billing team", templateID)
		assert.NotContains(t, html, "{{", templateID)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	d := newDisabledDispatcher(t)

	_, err := d.renderTemplate("no-such-template", nil)
	assert.True(t, ierr.IsNotFound(err))
}
