package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appinvoicing "github.com/paydesk/backend/internal/application/invoicing"
	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/partner"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/domain/shared/valueobject"
	"github.com/paydesk/backend/internal/infrastructure/printing"
	"github.com/paydesk/backend/internal/infrastructure/storage"
)

// MockInvoiceRepository implements invoicing.InvoiceRepository for testing
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

// fixedRenderer returns a canned PDF for any request
type fixedRenderer struct {
	lastReq *printing.RenderRequest
}

func (r *fixedRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.lastReq = req
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 test"), PageCount: 1}, nil
}

func (r *fixedRenderer) Close() error { return nil }

func setupInvoiceHandler(invoiceRepo *MockInvoiceRepository, customerRepo *MockCustomerRepository) (*InvoiceHandler, *storage.StubScreenshotStorage) {
	screenshots := storage.NewStubScreenshotStorage()
	printer := printing.NewInvoicePrinter(&fixedRenderer{}, printing.CompanyInfo{Name: "PayDesk"}, nil)
	service := appinvoicing.NewInvoiceService(invoiceRepo, customerRepo)
	return NewInvoiceHandler(service, screenshots, printer), screenshots
}

func createTestInvoice(t *testing.T, number string) *invoicing.Invoice {
	t.Helper()
	item, err := invoicing.NewInvoiceItem("Safety gloves", decimal.NewFromInt(10), decimal.NewFromInt(150))
	require.NoError(t, err)

	invoiceDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := invoicing.NewInvoice(
		number,
		invoiceDate,
		invoiceDate.AddDate(0, 0, 30),
		invoicing.BuyerDetails{Name: "Joel Fernandes", Address: "Mumbai"},
		[]invoicing.InvoiceItem{*item},
	)
	require.NoError(t, err)
	return invoice
}

func TestInvoiceHandler_Create_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-2025-001").Return(false, nil)
	customerRepo.On("FindAllOrdered", mock.Anything).Return([]partner.Customer{}, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

	router := setupTestRouter()
	router.POST("/invoices", handler.Create)

	body, _ := json.Marshal(appinvoicing.CreateInvoiceRequest{
		Number:      "INV-2025-001",
		InvoiceDate: "2025-03-01",
		DueDate:     "2025-03-31",
		BuyerName:   "Joel Fernandes",
		Items: []appinvoicing.ItemRequest{
			{Description: "Safety gloves", Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(150)},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceHandler_Create_DuplicateNumber(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoiceRepo.On("ExistsByNumber", mock.Anything, "INV-2025-001").Return(true, nil)

	router := setupTestRouter()
	router.POST("/invoices", handler.Create)

	body, _ := json.Marshal(appinvoicing.CreateInvoiceRequest{
		Number:      "INV-2025-001",
		InvoiceDate: "2025-03-01",
		DueDate:     "2025-03-31",
		Items: []appinvoicing.ItemRequest{
			{Description: "Safety gloves", Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(150)},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	invoiceRepo.AssertNotCalled(t, "Save")
}

func TestInvoiceHandler_GetByNumber_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoice := createTestInvoice(t, "INV-2025-001")
	invoiceRepo.On("FindByNumber", mock.Anything, "INV-2025-001").Return(invoice, nil)

	router := setupTestRouter()
	router.GET("/invoices/number/:number", handler.GetByNumber)

	req := httptest.NewRequest(http.MethodGet, "/invoices/number/INV-2025-001", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data appinvoicing.InvoiceResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INV-2025-001", resp.Data.Number)
}

func TestInvoiceHandler_AddPayment_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoice := createTestInvoice(t, "INV-2025-001")
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

	router := setupTestRouter()
	router.POST("/invoices/:id/payments", handler.AddPayment)

	body, _ := json.Marshal(appinvoicing.AddPaymentRequest{
		Amount: decimal.NewFromInt(1500),
		Method: "GPay",
	})
	req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoice.ID.String()+"/payments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data appinvoicing.RecordPaymentResult `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Paid", string(resp.Data.Invoice.Status))
}

func TestInvoiceHandler_AddPayment_InvalidMethod(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	router := setupTestRouter()
	router.POST("/invoices/:id/payments", handler.AddPayment)

	body, _ := json.Marshal(map[string]any{"amount": "100", "method": "Cheque"})
	req := httptest.NewRequest(http.MethodPost, "/invoices/"+uuid.NewString()+"/payments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	invoiceRepo.AssertNotCalled(t, "FindByID")
}

func TestInvoiceHandler_AddPayment_ZeroAmount(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	router := setupTestRouter()
	router.POST("/invoices/:id/payments", handler.AddPayment)

	body, _ := json.Marshal(map[string]any{"amount": "0", "method": "Cash"})
	req := httptest.NewRequest(http.MethodPost, "/invoices/"+uuid.NewString()+"/payments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	invoiceRepo.AssertNotCalled(t, "FindByID")

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "amount", resp.Error.Details[0].Field)
}

func TestInvoiceHandler_DownloadPDF_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoice := createTestInvoice(t, "INV-2025-001")
	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	router := setupTestRouter()
	router.GET("/invoices/:id/pdf", handler.DownloadPDF)

	req := httptest.NewRequest(http.MethodGet, "/invoices/"+invoice.ID.String()+"/pdf", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "INV-2025-001.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestInvoiceHandler_UploadScreenshot_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, screenshots := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoice := createTestInvoice(t, "INV-2025-001")
	payment, err := invoicing.NewPayment(valueobject.NewMoneyINRFromFloat(500), invoicing.PaymentMethodGPay, "")
	require.NoError(t, err)
	require.NoError(t, invoice.AddPayment(*payment))

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

	router := setupTestRouter()
	router.POST("/invoices/:id/payments/:paymentID/screenshot", handler.UploadScreenshot)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("screenshot", "gpay.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	url := "/invoices/" + invoice.ID.String() + "/payments/" + payment.ID.String() + "/screenshot"
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ObjectKey   string `json:"object_key"`
			DownloadURL string `json:"download_url"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data.ObjectKey, "screenshots/INV-2025-001/")
	assert.NotEmpty(t, resp.Data.DownloadURL)

	exists, err := screenshots.Exists(context.Background(), resp.Data.ObjectKey)
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestInvoiceHandler_UploadScreenshot_MissingFile(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	router := setupTestRouter()
	router.POST("/invoices/:id/payments/:paymentID/screenshot", handler.UploadScreenshot)

	url := "/invoices/" + uuid.NewString() + "/payments/" + uuid.NewString() + "/screenshot"
	req := httptest.NewRequest(http.MethodPost, url, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_ScreenshotURL_NoScreenshot(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoice := createTestInvoice(t, "INV-2025-001")
	payment, err := invoicing.NewPayment(valueobject.NewMoneyINRFromFloat(500), invoicing.PaymentMethodCash, "")
	require.NoError(t, err)
	require.NoError(t, invoice.AddPayment(*payment))

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	router := setupTestRouter()
	router.GET("/invoices/:id/payments/:paymentID/screenshot", handler.ScreenshotURL)

	url := "/invoices/" + invoice.ID.String() + "/payments/" + payment.ID.String() + "/screenshot"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_RemovePayment_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	handler, _ := setupInvoiceHandler(invoiceRepo, customerRepo)

	invoice := createTestInvoice(t, "INV-2025-001")
	payment, err := invoicing.NewPayment(valueobject.NewMoneyINRFromFloat(500), invoicing.PaymentMethodGPay, "")
	require.NoError(t, err)
	require.NoError(t, invoice.AddPayment(*payment))

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

	router := setupTestRouter()
	router.DELETE("/invoices/:id/payments/:paymentID", handler.RemovePayment)

	url := "/invoices/" + invoice.ID.String() + "/payments/" + payment.ID.String()
	req := httptest.NewRequest(http.MethodDelete, url, nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data appinvoicing.InvoiceResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Payments)
	assert.Equal(t, "Unpaid", string(resp.Data.Status))
}
