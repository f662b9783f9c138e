package chatbot

import (
	"context"

	appinvoicing "github.com/paydesk/backend/internal/application/invoicing"
	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// ExtractedPayment is the structured result of running a free-text message
// through the extraction oracle
type ExtractedPayment struct {
	CustomerName string          `json:"customerName"`
	Amount       decimal.Decimal `json:"amount"`
}

// Extractor turns a free-text payment message into structured fields.
// Implementations must return a typed error rather than partial results.
type Extractor interface {
	Extract(ctx context.Context, text string) (*ExtractedPayment, error)
}

// PendingPayment is the state parked between receiving a payment message
// and the user picking a payment method
type PendingPayment struct {
	CustomerName  string          `json:"customer_name"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Overpayment   bool            `json:"overpayment"`
}

// PendingStore holds pending payments keyed by chat session. Entries expire
// on their own (store-configured TTL); Get returns (nil, nil) for a missing
// or expired entry.
type PendingStore interface {
	Put(ctx context.Context, key string, pending PendingPayment) error
	Get(ctx context.Context, key string) (*PendingPayment, error)
	Delete(ctx context.Context, key string) error
}

// PaymentPlanner plans and applies payments. Satisfied by
// invoicing.PaymentRecorder.
type PaymentPlanner interface {
	Plan(ctx context.Context, customerName string, amount decimal.Decimal) (*appinvoicing.PaymentPlan, error)
	Apply(ctx context.Context, invoiceNumber string, amount decimal.Decimal, method invoicing.PaymentMethod, reference string) (*appinvoicing.RecordPaymentResult, error)
}
