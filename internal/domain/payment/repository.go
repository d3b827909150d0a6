package payment

import "context"

// Gateway is the payment provider capability the recovery process consumes.
// Authentication and provider configuration live behind the implementation.
//
// Both calls are network I/O and must honor context cancellation; the
// implementation carries a bounded timeout.
type Gateway interface {
	// ListOpenInvoices returns open invoices for the gateway subscription,
	// oldest first, capped at limit.
	ListOpenInvoices(ctx context.Context, gatewaySubscriptionID string, limit int) ([]*Invoice, error)

	// CaptureInvoice attempts to collect payment for the invoice without
	// forgiving the debt on failure. Returns the invoice's resulting state.
	CaptureInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
}
