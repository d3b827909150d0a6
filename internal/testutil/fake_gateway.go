package testutil

import (
	"context"
	"sync"

	"github.com/recouphq/recoup/internal/domain/payment"
	ierr "github.com/recouphq/recoup/internal/errors"
)

// FakeGateway implements payment.Gateway with scripted responses for tests.
type FakeGateway struct {
	mu sync.Mutex

	// OpenInvoices maps gateway subscription ID to the invoices returned by
	// ListOpenInvoices.
	OpenInvoices map[string][]*payment.Invoice
	// ListErr, when set, is returned by ListOpenInvoices.
	ListErr error

	// CaptureResults maps invoice ID to the invoice state returned by
	// CaptureInvoice. Missing entries produce a gateway error.
	CaptureResults map[string]*payment.Invoice
	// CaptureErr, when set, is returned by CaptureInvoice for any invoice.
	CaptureErr error

	// ListCalls and CaptureCalls record the arguments of each call.
	ListCalls    []string
	CaptureCalls []string
}

// NewFakeGateway creates a new fake payment gateway
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		OpenInvoices:   make(map[string][]*payment.Invoice),
		CaptureResults: make(map[string]*payment.Invoice),
	}
}

func (g *FakeGateway) ListOpenInvoices(ctx context.Context, gatewaySubscriptionID string, limit int) ([]*payment.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ListCalls = append(g.ListCalls, gatewaySubscriptionID)
	if g.ListErr != nil {
		return nil, g.ListErr
	}

	invoices := g.OpenInvoices[gatewaySubscriptionID]
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return invoices, nil
}

func (g *FakeGateway) CaptureInvoice(ctx context.Context, invoiceID string) (*payment.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.CaptureCalls = append(g.CaptureCalls, invoiceID)
	if g.CaptureErr != nil {
		return nil, g.CaptureErr
	}

	inv, ok := g.CaptureResults[invoiceID]
	if !ok {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found at gateway").
			WithReportableDetails(map[string]interface{}{
				"invoice_id": invoiceID,
			}).
			Mark(ierr.ErrGateway)
	}
	return inv, nil
}

// Clear resets scripted responses and recorded calls.
func (g *FakeGateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.OpenInvoices = make(map[string][]*payment.Invoice)
	g.CaptureResults = make(map[string]*payment.Invoice)
	g.ListErr = nil
	g.CaptureErr = nil
	g.ListCalls = nil
	g.CaptureCalls = nil
}
