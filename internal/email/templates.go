package email

import "github.com/recouphq/recoup/internal/types"

// emailSubjects maps template identifiers to subject lines.
var emailSubjects = map[string]string{
	types.TemplateDunningFirstReminder:  "Payment failed — we'll retry automatically",
	types.TemplateDunningSecondReminder: "Second notice: your payment is still failing",
	types.TemplateDunningFinalWarning:   "Final warning: your subscription will be suspended",
	types.TemplateDunningSuspended:      "Your subscription has been suspended",
	types.TemplatePaymentSuccess:        "Payment received — thanks!",
}

// emailTemplates stores email templates as string constants
var emailTemplates = map[string]string{
	types.TemplateDunningFirstReminder: `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi,</p>
    <p>We couldn't collect payment for your <strong>{{.tier}}</strong> subscription.</p>
    <p>No action is needed yet — we'll automatically retry on <strong>{{.next_retry_date}}</strong>
    (attempt {{.attempt_number}} of {{.max_attempts}}). If you'd like to resolve this sooner,
    please update your payment method.</p>
    <p>— The Recoup billing team</p>
</body>
</html>`,

	types.TemplateDunningSecondReminder: `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi,</p>
    <p>Your payment for the <strong>{{.tier}}</strong> subscription failed again
    (attempt {{.attempt_number}} of {{.max_attempts}}).</p>
    <p>We'll retry once more on <strong>{{.next_retry_date}}</strong>. Please update your
    payment method to keep your subscription active.</p>
    <p>— The Recoup billing team</p>
</body>
</html>`,

	types.TemplateDunningFinalWarning: `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi,</p>
    <p><strong>This is the final warning.</strong> Payment for your <strong>{{.tier}}</strong>
    subscription has failed {{.attempt_number}} of {{.max_attempts}} allowed times.</p>
    <p>If the next charge on <strong>{{.next_retry_date}}</strong> fails, your subscription
    will be suspended. Please update your payment method now.</p>
    <p>— The Recoup billing team</p>
</body>
</html>`,

	types.TemplateDunningSuspended: `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi,</p>
    <p>After {{.attempt_count}} failed payment attempts, your <strong>{{.tier}}</strong>
    subscription was suspended on {{.suspended_at}}.</p>
    <p>Your data is safe. You can reactivate at any time by updating your payment method
    from the billing portal.</p>
    <p>— The Recoup billing team</p>
</body>
</html>`,

	types.TemplatePaymentSuccess: `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi,</p>
    <p>Good news — we've successfully collected the outstanding payment for your
    <strong>{{.tier}}</strong> subscription. Your service is fully active again.</p>
    <p>— The Recoup billing team</p>
</body>
</html>`,
}
