package invoicing

import (
	"context"

	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its business key
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindAll finds all invoices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// FindUnpaidByCustomer returns a customer's not-fully-paid invoices
	// ordered oldest-first (invoice date ascending). Payment selection
	// depends on this ordering.
	FindUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]Invoice, error)

	// FindByStatus finds invoices in the given settlement state
	FindByStatus(ctx context.Context, status PaymentStatus, filter shared.Filter) ([]Invoice, error)

	// Save creates or updates an invoice, keyed by invoice number on upsert
	Save(ctx context.Context, invoice *Invoice) error

	// Delete deletes an invoice
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByNumber checks whether an invoice number is already taken
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}
