package invoicing

import (
	"context"

	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/partner"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentRecorder turns "customer paid amount" facts into invoice payments.
// Planning and applying are separate steps so a conversational flow can ask
// for the payment method in between.
type PaymentRecorder struct {
	invoiceRepo  invoicing.InvoiceRepository
	customerRepo partner.CustomerRepository
}

// NewPaymentRecorder creates a new PaymentRecorder
func NewPaymentRecorder(invoiceRepo invoicing.InvoiceRepository, customerRepo partner.CustomerRepository) *PaymentRecorder {
	return &PaymentRecorder{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
	}
}

// Plan resolves a customer name fragment and an amount to the invoice the
// payment should settle. Nothing is persisted.
func (r *PaymentRecorder) Plan(ctx context.Context, customerName string, amount decimal.Decimal) (*PaymentPlan, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	customers, err := r.customerRepo.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := partner.MatchByName(customers, customerName)
	if err != nil {
		return nil, err
	}

	unpaid, err := r.invoiceRepo.FindUnpaidByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	// The stored status column is only a prefilter; the rederived balance
	// decides. A row whose payments already settle it is never a candidate.
	candidates := make([]*invoicing.Invoice, 0, len(unpaid))
	for i := range unpaid {
		if !unpaid[i].Balance.IsPositive() {
			continue
		}
		candidates = append(candidates, &unpaid[i])
	}

	selection, err := invoicing.SelectInvoiceForPayment(candidates, amount)
	if err != nil {
		return nil, err
	}

	return &PaymentPlan{
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		InvoiceNumber: selection.Invoice.Number,
		InvoiceTotal:  selection.Invoice.Total,
		Balance:       selection.Invoice.Balance,
		Amount:        amount,
		Overpayment:   selection.Overpayment,
	}, nil
}

// Apply records the planned payment against the invoice, keyed by invoice
// number. Persistence failure surfaces as a typed error and leaves the
// payment unapplied.
func (r *PaymentRecorder) Apply(ctx context.Context, invoiceNumber string, amount decimal.Decimal, method invoicing.PaymentMethod, reference string) (*RecordPaymentResult, error) {
	invoice, err := r.invoiceRepo.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}

	payment, err := invoicing.NewPayment(valueobject.NewMoneyINR(amount), method, reference)
	if err != nil {
		return nil, err
	}

	overpayment := invoice.Balance.LessThan(payment.Amount)

	if err := invoice.AddPayment(*payment); err != nil {
		return nil, err
	}
	if err := r.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, shared.ErrPersistenceFailed
	}

	return &RecordPaymentResult{
		Invoice:     ToInvoiceResponse(invoice),
		Payment:     ToPaymentResponse(payment),
		Overpayment: overpayment,
	}, nil
}
