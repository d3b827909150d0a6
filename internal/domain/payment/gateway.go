package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the gateway-side status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusOpen          InvoiceStatus = "open"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusVoid          InvoiceStatus = "void"
	InvoiceStatusUncollectible InvoiceStatus = "uncollectible"
)

// Invoice is the gateway's record of an amount owed for one billing period.
// Amounts are in major currency units.
type Invoice struct {
	ID         string          `json:"id"`
	Status     InvoiceStatus   `json:"status"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsPaid reports whether the gateway considers the invoice settled.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}
