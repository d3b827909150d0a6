package stripe

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/recouphq/recoup/internal/config"
	"github.com/recouphq/recoup/internal/domain/payment"
	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/logger"
)

const (
	// requestTimeout bounds every Stripe API call. A timeout is treated like
	// any other gateway failure by the caller.
	requestTimeout = 30 * time.Second

	// listPageSize is how many open invoices we pull before picking the
	// oldest ones. Stripe returns newest first.
	listPageSize = 25
)

// Client implements payment.Gateway on top of the Stripe API.
type Client struct {
	api    *client.API
	logger *logger.Logger
}

// NewClient creates a new Stripe gateway client
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	if cfg.Stripe.SecretKey == "" {
		return nil, ierr.NewError("stripe secret key is not configured").
			WithHint("Set stripe.secret_key to enable payment recovery").
			Mark(ierr.ErrValidation)
	}

	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, stripeapi.NewBackends(&http.Client{
		Timeout: requestTimeout,
	}))

	return &Client{api: api, logger: log}, nil
}

// ListOpenInvoices returns the oldest open invoices for the Stripe
// subscription, capped at limit.
func (c *Client) ListOpenInvoices(ctx context.Context, gatewaySubscriptionID string, limit int) ([]*payment.Invoice, error) {
	if gatewaySubscriptionID == "" {
		return nil, ierr.NewError("gateway subscription id is required").
			WithHint("Gateway subscription reference is required").
			Mark(ierr.ErrValidation)
	}
	if limit <= 0 {
		limit = 1
	}

	params := &stripeapi.InvoiceListParams{
		Subscription: stripeapi.String(gatewaySubscriptionID),
		Status:       stripeapi.String(string(stripeapi.InvoiceStatusOpen)),
	}
	params.Context = ctx
	params.Limit = stripeapi.Int64(listPageSize)

	var invoices []*payment.Invoice
	iter := c.api.Invoices.List(params)
	for iter.Next() {
		invoices = append(invoices, fromStripeInvoice(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list open invoices from Stripe").
			WithReportableDetails(map[string]interface{}{
				"gateway_subscription_id": gatewaySubscriptionID,
			}).
			Mark(ierr.ErrGateway)
	}

	// Oldest outstanding invoice first; that is the one to collect.
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.Before(invoices[j].CreatedAt)
	})
	if len(invoices) > limit {
		invoices = invoices[:limit]
	}

	return invoices, nil
}

// CaptureInvoice attempts to pay the invoice. Forgive stays false: a failed
// capture must not write off the debt.
func (c *Client) CaptureInvoice(ctx context.Context, invoiceID string) (*payment.Invoice, error) {
	if invoiceID == "" {
		return nil, ierr.NewError("invoice id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	params := &stripeapi.InvoicePayParams{
		Forgive: stripeapi.Bool(false),
	}
	params.Context = ctx

	inv, err := c.api.Invoices.Pay(invoiceID, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to capture invoice payment").
			WithReportableDetails(map[string]interface{}{
				"invoice_id": invoiceID,
			}).
			Mark(ierr.ErrGateway)
	}

	c.logger.Infow("captured invoice payment",
		"invoice_id", inv.ID,
		"status", inv.Status,
		"amount_paid", inv.AmountPaid)

	return fromStripeInvoice(inv), nil
}

// fromStripeInvoice converts a Stripe invoice to the domain representation,
// amounts in major currency units.
func fromStripeInvoice(inv *stripeapi.Invoice) *payment.Invoice {
	if inv == nil {
		return nil
	}
	currency := string(inv.Currency)
	return &payment.Invoice{
		ID:         inv.ID,
		Status:     payment.InvoiceStatus(inv.Status),
		AmountDue:  fromMinorUnits(inv.AmountDue, currency),
		AmountPaid: fromMinorUnits(inv.AmountPaid, currency),
		Currency:   currency,
		CreatedAt:  time.Unix(inv.Created, 0).UTC(),
	}
}

// zeroDecimalCurrencies are billed by Stripe in whole units.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true,
	"xpf": true,
}

func fromMinorUnits(amount int64, currency string) decimal.Decimal {
	if zeroDecimalCurrencies[currency] {
		return decimal.NewFromInt(amount)
	}
	return decimal.New(amount, -2)
}
