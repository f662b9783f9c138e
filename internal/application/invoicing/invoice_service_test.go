package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/partner"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoicing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStatus(ctx context.Context, status invoicing.PaymentStatus, filter shared.Filter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllOrdered(ctx context.Context) ([]partner.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func moneyINR(v float64) valueobject.Money {
	return valueobject.NewMoneyINRFromFloat(v)
}

func unpaidInvoice(t *testing.T, number string, balance float64) *invoicing.Invoice {
	t.Helper()
	item, err := invoicing.NewInvoiceItem("Work", decimal.NewFromInt(1), decimal.NewFromFloat(balance))
	require.NoError(t, err)

	issued := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	inv, err := invoicing.NewInvoice(number, issued, issued.AddDate(0, 1, 0),
		invoicing.BuyerDetails{Name: "Joel"}, []invoicing.InvoiceItem{*item})
	require.NoError(t, err)
	return inv
}

// =============================================================================
// InvoiceService tests
// =============================================================================

func TestInvoiceService_Create(t *testing.T) {
	validReq := CreateInvoiceRequest{
		Number:      "INV-001",
		InvoiceDate: "2025-02-01",
		DueDate:     "2025-03-01",
		BuyerName:   "Joel",
		Items: []ItemRequest{
			{Description: "Plywood", Quantity: decimal.NewFromInt(4), Rate: decimal.NewFromInt(250)},
		},
	}

	t.Run("creates invoice with derived totals", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-001").Return(false, nil)
		customerRepo.On("FindAllOrdered", mock.Anything).Return([]partner.Customer{}, nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		service := NewInvoiceService(invoiceRepo, customerRepo)
		resp, err := service.Create(context.Background(), validReq)

		require.NoError(t, err)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(1000)))
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, "Unpaid", resp.Status)
		assert.Nil(t, resp.CustomerID)
	})

	t.Run("links existing customer matching the buyer name", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		joel, _ := partner.NewCustomer("Joel")

		invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-001").Return(false, nil)
		customerRepo.On("FindAllOrdered", mock.Anything).Return([]partner.Customer{*joel}, nil)
		invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		req := validReq
		req.BuyerName = "joel"

		service := NewInvoiceService(invoiceRepo, customerRepo)
		resp, err := service.Create(context.Background(), req)

		require.NoError(t, err)
		require.NotNil(t, resp.CustomerID)
		assert.Equal(t, joel.ID, *resp.CustomerID)
	})

	t.Run("failed customer lookup leaves invoice unlinked", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-001").Return(false, nil)
		customerRepo.On("FindAllOrdered", mock.Anything).Return(nil, errors.New("connection refused"))
		invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		service := NewInvoiceService(invoiceRepo, customerRepo)
		resp, err := service.Create(context.Background(), validReq)

		require.NoError(t, err)
		assert.Nil(t, resp.CustomerID)
	})

	t.Run("rejects duplicate number", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-001").Return(true, nil)

		service := NewInvoiceService(invoiceRepo, customerRepo)
		_, err := service.Create(context.Background(), validReq)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("snapshots buyer from linked customer", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		customer, _ := partner.NewCustomer("Joel")
		require.NoError(t, customer.SetContact("9876543210", "joel@example.com"))
		require.NoError(t, customer.SetAddress("12 Main Street"))

		invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-001").Return(false, nil)
		customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		req := validReq
		req.BuyerName = ""
		req.CustomerID = &customer.ID

		service := NewInvoiceService(invoiceRepo, customerRepo)
		resp, err := service.Create(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "Joel", resp.BuyerName)
		assert.Equal(t, "12 Main Street", resp.BuyerAddress)
		assert.Equal(t, customer.ID, *resp.CustomerID)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		customerRepo := new(MockCustomerRepository)
		invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-001").Return(false, nil)

		req := validReq
		req.InvoiceDate = "01/02/2025"

		service := NewInvoiceService(invoiceRepo, customerRepo)
		_, err := service.Create(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestInvoiceService_AddPayment(t *testing.T) {
	t.Run("records payment and rederives state", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		invoice := unpaidInvoice(t, "INV-001", 1500)
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

		service := NewInvoiceService(invoiceRepo, new(MockCustomerRepository))
		result, err := service.AddPayment(context.Background(), invoice.ID, AddPaymentRequest{
			Amount: decimal.NewFromInt(500),
			Method: "GPay",
		})

		require.NoError(t, err)
		assert.True(t, result.Invoice.AmountPaid.Equal(decimal.NewFromInt(500)))
		assert.True(t, result.Invoice.Balance.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, "Partial", result.Invoice.Status)
		assert.False(t, result.Overpayment)
	})

	t.Run("flags overpayment", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		invoice := unpaidInvoice(t, "INV-001", 300)
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

		service := NewInvoiceService(invoiceRepo, new(MockCustomerRepository))
		result, err := service.AddPayment(context.Background(), invoice.ID, AddPaymentRequest{
			Amount: decimal.NewFromInt(1000),
			Method: "Cash",
		})

		require.NoError(t, err)
		assert.True(t, result.Overpayment)
		assert.True(t, result.Invoice.Balance.Equal(decimal.NewFromInt(-700)))
		assert.Equal(t, "Paid", result.Invoice.Status)
	})

	t.Run("persistence failure surfaces typed error", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		invoice := unpaidInvoice(t, "INV-001", 1500)
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("Save", mock.Anything, invoice).Return(errors.New("connection reset"))

		service := NewInvoiceService(invoiceRepo, new(MockCustomerRepository))
		_, err := service.AddPayment(context.Background(), invoice.ID, AddPaymentRequest{
			Amount: decimal.NewFromInt(500),
			Method: "GPay",
		})

		assert.ErrorIs(t, err, shared.ErrPersistenceFailed)
	})

	t.Run("rejects invalid method", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		invoice := unpaidInvoice(t, "INV-001", 1500)
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		service := NewInvoiceService(invoiceRepo, new(MockCustomerRepository))
		_, err := service.AddPayment(context.Background(), invoice.ID, AddPaymentRequest{
			Amount: decimal.NewFromInt(500),
			Method: "Cheque",
		})

		assert.Error(t, err)
		invoiceRepo.AssertNotCalled(t, "Save")
	})
}

func TestInvoiceService_RemovePayment(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	invoice := unpaidInvoice(t, "INV-001", 1500)
	payment, err := invoicing.NewPayment(moneyINR(1500), invoicing.PaymentMethodCash, "")
	require.NoError(t, err)
	require.NoError(t, invoice.AddPayment(*payment))
	require.Equal(t, invoicing.PaymentStatusPaid, invoice.Status)

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

	service := NewInvoiceService(invoiceRepo, new(MockCustomerRepository))
	resp, err := service.RemovePayment(context.Background(), invoice.ID, payment.ID)

	require.NoError(t, err)
	assert.Equal(t, "Unpaid", resp.Status)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(1500)))
}

func TestInvoiceService_AttachScreenshot(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	invoice := unpaidInvoice(t, "INV-001", 1500)
	payment, err := invoicing.NewPayment(moneyINR(500), invoicing.PaymentMethodGPay, "")
	require.NoError(t, err)
	require.NoError(t, invoice.AddPayment(*payment))

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)

	service := NewInvoiceService(invoiceRepo, new(MockCustomerRepository))

	resp, err := service.AttachScreenshot(context.Background(), invoice.ID, payment.ID, "screenshots/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "screenshots/abc.jpg", resp.Payments[0].ScreenshotKey)

	_, err = service.AttachScreenshot(context.Background(), invoice.ID, uuid.New(), "screenshots/abc.jpg")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
