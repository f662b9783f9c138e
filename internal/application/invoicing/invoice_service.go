package invoicing

import (
	"context"
	"time"

	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/partner"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	invoiceRepo  invoicing.InvoiceRepository
	customerRepo partner.CustomerRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo invoicing.InvoiceRepository, customerRepo partner.CustomerRepository) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
	}
}

// Create creates a new invoice. When a customer ID is given the buyer
// snapshot is taken from the customer record; explicit buyer fields win.
// Without a customer ID, an existing customer whose name equals the buyer
// name is linked automatically, so the invoice stays reachable through
// customer-scoped flows like conversational payment recording.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	exists, err := s.invoiceRepo.ExistsByNumber(ctx, req.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Invoice with this number already exists")
	}

	invoiceDate, err := time.Parse(dateLayout, req.InvoiceDate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DATE", "Invoice date must be YYYY-MM-DD")
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DATE", "Due date must be YYYY-MM-DD")
	}

	buyer := invoicing.BuyerDetails{
		Name:    req.BuyerName,
		Address: req.BuyerAddress,
		Phone:   req.BuyerPhone,
		Email:   req.BuyerEmail,
	}
	customerID := req.CustomerID
	if customerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		if buyer.Name == "" {
			buyer.Name = customer.Name
		}
		if buyer.Address == "" {
			buyer.Address = customer.Address
		}
		if buyer.Phone == "" {
			buyer.Phone = customer.Phone
		}
		if buyer.Email == "" {
			buyer.Email = customer.Email
		}
	} else if buyer.Name != "" {
		// Linking is best effort; a failed lookup or no exact name match
		// leaves the invoice unlinked rather than blocking creation.
		if customers, err := s.customerRepo.FindAllOrdered(ctx); err == nil {
			if customer, ok := partner.MatchByExactName(customers, buyer.Name); ok {
				customerID = &customer.ID
			}
		}
	}

	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	invoice, err := invoicing.NewInvoice(req.Number, invoiceDate, dueDate, buyer, items)
	if err != nil {
		return nil, err
	}
	if customerID != nil {
		invoice.LinkCustomer(*customerID)
	}
	invoice.Notes = req.Notes
	invoice.Terms = req.Terms

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetEntity retrieves the invoice aggregate itself, for consumers that
// need more than the response DTO (PDF rendering)
func (s *InvoiceService) GetEntity(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// GetByNumber retrieves an invoice by its business key
func (s *InvoiceService) GetByNumber(ctx context.Context, number string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "invoice_date",
		OrderDir: "desc",
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, ToInvoiceResponse(&invoices[i]))
	}
	return responses, total, nil
}

// Update updates an invoice's dates, notes, terms, and (optionally) items
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.InvoiceDate != nil {
		d, err := time.Parse(dateLayout, *req.InvoiceDate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DATE", "Invoice date must be YYYY-MM-DD")
		}
		invoice.InvoiceDate = d
	}
	if req.DueDate != nil {
		d, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DATE", "Due date must be YYYY-MM-DD")
		}
		invoice.DueDate = d
	}
	if invoice.DueDate.Before(invoice.InvoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}
	if req.Items != nil {
		items, err := buildItems(*req.Items)
		if err != nil {
			return nil, err
		}
		invoice.Items = items
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.Terms != nil {
		invoice.Terms = *req.Terms
	}

	invoice.Recalculate()
	invoice.UpdatedAt = time.Now()

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete deletes an invoice
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.invoiceRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// AddPayment records a payment directly against a known invoice
func (s *InvoiceService) AddPayment(ctx context.Context, invoiceID uuid.UUID, req AddPaymentRequest) (*RecordPaymentResult, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	method, err := invoicing.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}

	payment, err := invoicing.NewPayment(valueobject.NewMoneyINR(req.Amount), method, req.Reference)
	if err != nil {
		return nil, err
	}
	payment.Notes = req.Notes

	return s.applyPayment(ctx, invoice, payment)
}

// RemovePayment deletes a payment from an invoice and rederives its state
func (s *InvoiceService) RemovePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.RemovePayment(paymentID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, shared.ErrPersistenceFailed
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// AttachScreenshot links an uploaded screenshot object to a payment
func (s *InvoiceService) AttachScreenshot(ctx context.Context, invoiceID, paymentID uuid.UUID, objectKey string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range invoice.Payments {
		if invoice.Payments[i].ID == paymentID {
			invoice.Payments[i].ScreenshotKey = objectKey
			found = true
			break
		}
	}
	if !found {
		return nil, shared.ErrNotFound
	}

	invoice.UpdatedAt = time.Now()
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, shared.ErrPersistenceFailed
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// applyPayment appends the payment and persists the invoice. On persistence
// failure the payment is not considered applied and a typed error surfaces.
func (s *InvoiceService) applyPayment(ctx context.Context, invoice *invoicing.Invoice, payment *invoicing.Payment) (*RecordPaymentResult, error) {
	overpayment := invoice.Balance.LessThan(payment.Amount)

	if err := invoice.AddPayment(*payment); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, shared.ErrPersistenceFailed
	}

	return &RecordPaymentResult{
		Invoice:     ToInvoiceResponse(invoice),
		Payment:     ToPaymentResponse(payment),
		Overpayment: overpayment,
	}, nil
}

func buildItems(reqs []ItemRequest) ([]invoicing.InvoiceItem, error) {
	items := make([]invoicing.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		item, err := invoicing.NewInvoiceItem(r.Description, r.Quantity, r.Rate)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}
