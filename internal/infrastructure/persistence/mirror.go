package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/partner"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MirroredCustomerRepository decorates a CustomerRepository with an
// in-process read-through mirror. Every successful read or write refreshes
// the mirror; reads fall back to the last mirrored copy when the primary
// store errors. Mirrored values are advisory, never the source of truth.
type MirroredCustomerRepository struct {
	primary partner.CustomerRepository
	logger  *zap.Logger

	mu   sync.RWMutex
	byID map[uuid.UUID]partner.Customer
}

// NewMirroredCustomerRepository wraps primary with a mirror cache
func NewMirroredCustomerRepository(primary partner.CustomerRepository, logger *zap.Logger) *MirroredCustomerRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MirroredCustomerRepository{
		primary: primary,
		logger:  logger.Named("mirror"),
		byID:    make(map[uuid.UUID]partner.Customer),
	}
}

// FindByID reads from the primary and falls back to the mirror on failure
func (r *MirroredCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := r.primary.FindByID(ctx, id)
	if err == nil {
		r.remember(*customer)
		return customer, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		r.forget(id)
		return nil, err
	}

	r.mu.RLock()
	cached, ok := r.byID[id]
	r.mu.RUnlock()
	if ok {
		r.logger.Warn("customer read served from mirror", zap.String("id", id.String()), zap.Error(err))
		copied := cached
		return &copied, nil
	}
	return nil, err
}

// FindAll delegates to the primary and refreshes the mirror on success
func (r *MirroredCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	customers, err := r.primary.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		r.remember(customers[i])
	}
	return customers, nil
}

// FindAllOrdered reads from the primary and falls back to the mirror,
// preserving the oldest-first order matching depends on
func (r *MirroredCustomerRepository) FindAllOrdered(ctx context.Context) ([]partner.Customer, error) {
	customers, err := r.primary.FindAllOrdered(ctx)
	if err == nil {
		for i := range customers {
			r.remember(customers[i])
		}
		return customers, nil
	}

	r.mu.RLock()
	cached := make([]partner.Customer, 0, len(r.byID))
	for _, c := range r.byID {
		cached = append(cached, c)
	}
	r.mu.RUnlock()

	if len(cached) == 0 {
		return nil, err
	}

	sort.Slice(cached, func(i, j int) bool {
		return cached[i].CreatedAt.Before(cached[j].CreatedAt)
	})
	r.logger.Warn("customer list served from mirror", zap.Int("count", len(cached)), zap.Error(err))
	return cached, nil
}

// Save writes to the primary and refreshes the mirror on success
func (r *MirroredCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	if err := r.primary.Save(ctx, customer); err != nil {
		return err
	}
	r.remember(*customer)
	return nil
}

// Delete removes from the primary and the mirror
func (r *MirroredCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.primary.Delete(ctx, id); err != nil {
		return err
	}
	r.forget(id)
	return nil
}

// Count delegates to the primary
func (r *MirroredCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.primary.Count(ctx, filter)
}

func (r *MirroredCustomerRepository) remember(customer partner.Customer) {
	r.mu.Lock()
	r.byID[customer.ID] = customer
	r.mu.Unlock()
}

func (r *MirroredCustomerRepository) forget(id uuid.UUID) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

var _ partner.CustomerRepository = (*MirroredCustomerRepository)(nil)

// MirroredInvoiceRepository decorates an InvoiceRepository the same way
// MirroredCustomerRepository does for customers.
type MirroredInvoiceRepository struct {
	primary invoicing.InvoiceRepository
	logger  *zap.Logger

	mu   sync.RWMutex
	byID map[uuid.UUID]invoicing.Invoice
}

// NewMirroredInvoiceRepository wraps primary with a mirror cache
func NewMirroredInvoiceRepository(primary invoicing.InvoiceRepository, logger *zap.Logger) *MirroredInvoiceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MirroredInvoiceRepository{
		primary: primary,
		logger:  logger.Named("mirror"),
		byID:    make(map[uuid.UUID]invoicing.Invoice),
	}
}

// FindByID reads from the primary and falls back to the mirror on failure
func (r *MirroredInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	invoice, err := r.primary.FindByID(ctx, id)
	if err == nil {
		r.remember(*invoice)
		return invoice, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		r.forget(id)
		return nil, err
	}

	r.mu.RLock()
	cached, ok := r.byID[id]
	r.mu.RUnlock()
	if ok {
		r.logger.Warn("invoice read served from mirror", zap.String("id", id.String()), zap.Error(err))
		copied := cached
		return &copied, nil
	}
	return nil, err
}

// FindByNumber reads from the primary and falls back to the mirror on failure
func (r *MirroredInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoicing.Invoice, error) {
	invoice, err := r.primary.FindByNumber(ctx, number)
	if err == nil {
		r.remember(*invoice)
		return invoice, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cached := range r.byID {
		if cached.Number == number {
			r.logger.Warn("invoice read served from mirror", zap.String("number", number), zap.Error(err))
			copied := cached
			return &copied, nil
		}
	}
	return nil, err
}

// FindAll delegates to the primary and refreshes the mirror on success
func (r *MirroredInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Invoice, error) {
	invoices, err := r.primary.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		r.remember(invoices[i])
	}
	return invoices, nil
}

// FindUnpaidByCustomer reads from the primary and falls back to the mirror,
// preserving the oldest-first invoice date order selection depends on
func (r *MirroredInvoiceRepository) FindUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]invoicing.Invoice, error) {
	invoices, err := r.primary.FindUnpaidByCustomer(ctx, customerID)
	if err == nil {
		for i := range invoices {
			r.remember(invoices[i])
		}
		return invoices, nil
	}

	r.mu.RLock()
	cached := make([]invoicing.Invoice, 0)
	for _, inv := range r.byID {
		if inv.CustomerID != nil && *inv.CustomerID == customerID && inv.Status != invoicing.PaymentStatusPaid {
			cached = append(cached, inv)
		}
	}
	r.mu.RUnlock()

	if len(cached) == 0 {
		return nil, err
	}

	sort.Slice(cached, func(i, j int) bool {
		if cached[i].InvoiceDate.Equal(cached[j].InvoiceDate) {
			return cached[i].CreatedAt.Before(cached[j].CreatedAt)
		}
		return cached[i].InvoiceDate.Before(cached[j].InvoiceDate)
	})
	r.logger.Warn("unpaid invoice list served from mirror",
		zap.String("customer_id", customerID.String()),
		zap.Int("count", len(cached)),
		zap.Error(err))
	return cached, nil
}

// FindByStatus delegates to the primary and refreshes the mirror on success
func (r *MirroredInvoiceRepository) FindByStatus(ctx context.Context, status invoicing.PaymentStatus, filter shared.Filter) ([]invoicing.Invoice, error) {
	invoices, err := r.primary.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		r.remember(invoices[i])
	}
	return invoices, nil
}

// Save writes to the primary and refreshes the mirror on success.
// A failed write never touches the mirror.
func (r *MirroredInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	if err := r.primary.Save(ctx, invoice); err != nil {
		return err
	}
	r.remember(*invoice)
	return nil
}

// Delete removes from the primary and the mirror
func (r *MirroredInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.primary.Delete(ctx, id); err != nil {
		return err
	}
	r.forget(id)
	return nil
}

// Count delegates to the primary
func (r *MirroredInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.primary.Count(ctx, filter)
}

// ExistsByNumber delegates to the primary
func (r *MirroredInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	return r.primary.ExistsByNumber(ctx, number)
}

func (r *MirroredInvoiceRepository) remember(invoice invoicing.Invoice) {
	r.mu.Lock()
	r.byID[invoice.ID] = invoice
	r.mu.Unlock()
}

func (r *MirroredInvoiceRepository) forget(id uuid.UUID) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

var _ invoicing.InvoiceRepository = (*MirroredInvoiceRepository)(nil)
