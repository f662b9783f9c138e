package invoicing

import (
	"time"

	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents how much of an invoice has been settled
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"  // No payments recorded
	PaymentStatusPartial PaymentStatus = "Partial" // Some but not all paid
	PaymentStatusPaid    PaymentStatus = "Paid"    // Fully paid (or overpaid)
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// BuyerDetails is the customer snapshot frozen onto the invoice at issue
// time. Later edits to the customer record never touch issued invoices.
type BuyerDetails struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
}

// Invoice is the aggregate root for billing.
//
// AmountPaid, Balance and Status are derived: Recalculate rederives them
// from Items and Payments after every mutation. The persisted copies are a
// cache for queries, never the source of truth.
type Invoice struct {
	shared.BaseEntity
	Number      string
	InvoiceDate time.Time
	DueDate     time.Time
	CustomerID  *uuid.UUID
	Buyer       BuyerDetails
	Items       InvoiceItems
	Payments    Payments
	Total       decimal.Decimal
	AmountPaid  decimal.Decimal
	Balance     decimal.Decimal
	Status      PaymentStatus
	Notes       string
	Terms       string
}

// NewInvoice creates an invoice with derived fields computed from its items
func NewInvoice(number string, invoiceDate, dueDate time.Time, buyer BuyerDetails, items []InvoiceItem) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if buyer.Name == "" {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer name cannot be empty")
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}

	inv := &Invoice{
		BaseEntity:  shared.NewBaseEntity(),
		Number:      number,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		Buyer:       buyer,
		Items:       items,
		Payments:    Payments{},
		Status:      PaymentStatusUnpaid,
	}
	inv.Recalculate()
	return inv, nil
}

// LinkCustomer associates the invoice with a customer record.
// The buyer snapshot is left untouched.
func (inv *Invoice) LinkCustomer(customerID uuid.UUID) {
	inv.CustomerID = &customerID
	inv.UpdatedAt = time.Now()
}

// AddItem appends a line item and rederives totals
func (inv *Invoice) AddItem(item InvoiceItem) {
	inv.Items = append(inv.Items, item)
	inv.Recalculate()
	inv.UpdatedAt = time.Now()
}

// RemoveItem removes a line item by ID and rederives totals
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			inv.Recalculate()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// AddPayment appends a payment and rederives paid/balance/status.
// Overpayment is allowed; the balance simply goes negative.
func (inv *Invoice) AddPayment(payment Payment) error {
	if !payment.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !payment.Method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be 'GPay' or 'Cash'")
	}

	inv.Payments = append(inv.Payments, payment)
	inv.Recalculate()
	inv.UpdatedAt = time.Now()
	return nil
}

// RemovePayment removes a payment by ID and rederives paid/balance/status
func (inv *Invoice) RemovePayment(paymentID uuid.UUID) error {
	for i := range inv.Payments {
		if inv.Payments[i].ID == paymentID {
			inv.Payments = append(inv.Payments[:i], inv.Payments[i+1:]...)
			inv.Recalculate()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Recalculate rederives every cached field from items and payments.
// This is the only place derived fields are written.
func (inv *Invoice) Recalculate() {
	total := decimal.Zero
	for i := range inv.Items {
		inv.Items[i].Recalculate()
		total = total.Add(inv.Items[i].Amount)
	}

	paid := decimal.Zero
	for i := range inv.Payments {
		paid = paid.Add(inv.Payments[i].Amount)
	}

	inv.Total = total
	inv.AmountPaid = paid
	inv.Balance = total.Sub(paid)
	inv.Status = deriveStatus(paid, total)
}

func deriveStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.IsZero():
		return PaymentStatusUnpaid
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}

// IsSettled returns true once the invoice needs no further payment
func (inv *Invoice) IsSettled() bool {
	return inv.Status == PaymentStatusPaid
}

// GetBalanceMoney returns the outstanding balance as Money
func (inv *Invoice) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.Balance)
}

// GetTotalMoney returns the invoice total as Money
func (inv *Invoice) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.Total)
}
