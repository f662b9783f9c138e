package invoicing

import (
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the absolute tolerance used when checking whether a
// payment exactly settles an invoice. Amounts within a cent of the balance
// count as exact.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// Selection is the outcome of choosing an invoice for an incoming payment.
// Overpayment is set when the payment exceeds the chosen invoice's balance,
// so callers can flag it to the operator.
type Selection struct {
	Invoice     *Invoice
	Overpayment bool
}

// SelectInvoiceForPayment picks which of a customer's unpaid invoices an
// incoming payment should settle. Candidates must be ordered oldest-first
// (invoice date ascending); the caller's ordering decides every tie.
//
// Priority:
//  1. the first invoice whose balance matches the amount within
//     BalanceTolerance, checked across all candidates before anything else;
//  2. otherwise the first invoice whose balance covers the amount;
//  3. otherwise the oldest invoice, even though the payment overpays it.
//     The overpayment is preserved as a negative balance, never clamped.
func SelectInvoiceForPayment(invoices []*Invoice, amount decimal.Decimal) (Selection, error) {
	if len(invoices) == 0 {
		return Selection{}, shared.ErrNoUnpaidInvoices
	}

	for _, inv := range invoices {
		if inv.Balance.Sub(amount).Abs().LessThan(BalanceTolerance) {
			return Selection{Invoice: inv}, nil
		}
	}

	for _, inv := range invoices {
		if inv.Balance.GreaterThanOrEqual(amount) {
			return Selection{Invoice: inv}, nil
		}
	}

	return Selection{Invoice: invoices[0], Overpayment: true}, nil
}
