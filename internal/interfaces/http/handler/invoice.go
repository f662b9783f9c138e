package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinvoicing "github.com/paydesk/backend/internal/application/invoicing"
	"github.com/paydesk/backend/internal/infrastructure/printing"
	"github.com/paydesk/backend/internal/infrastructure/storage"
)

const (
	maxScreenshotSize  = 10 << 20 // 10 MiB
	screenshotURLValid = 15 * time.Minute
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoicing.InvoiceService
	screenshots    appinvoicing.ObjectStorage
	printer        *printing.InvoicePrinter
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	invoiceService *appinvoicing.InvoiceService,
	screenshots appinvoicing.ObjectStorage,
	printer *printing.InvoicePrinter,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		screenshots:    screenshots,
		printer:        printer,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/number/:number", h.GetByNumber)
		invoices.GET("/:id", h.GetByID)
		invoices.PUT("/:id", h.Update)
		invoices.DELETE("/:id", h.Delete)
		invoices.GET("/:id/pdf", h.DownloadPDF)
		invoices.POST("/:id/payments", h.AddPayment)
		invoices.DELETE("/:id/payments/:paymentID", h.RemovePayment)
		invoices.POST("/:id/payments/:paymentID/screenshot", h.UploadScreenshot)
		invoices.GET("/:id/payments/:paymentID/screenshot", h.ScreenshotURL)
	}
}

// Create creates a new invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appinvoicing.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// List lists invoices with pagination and filters
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter appinvoicing.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// GetByID retrieves an invoice by ID
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// GetByNumber retrieves an invoice by its number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")

	invoice, err := h.invoiceService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Update updates an invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req appinvoicing.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete deletes an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// DownloadPDF renders the invoice as a PDF document
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetEntity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	pdfData, err := h.printer.PrintInvoice(c.Request.Context(), invoice)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, invoice.Number))
	c.Data(http.StatusOK, "application/pdf", pdfData)
}

// AddPayment records a payment against an invoice
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req appinvoicing.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.invoiceService.AddPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// RemovePayment deletes a payment from an invoice
func (h *InvoiceHandler) RemovePayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.parseID(c, "paymentID")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.RemovePayment(c.Request.Context(), id, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// screenshotUploadResponse is returned after a successful screenshot upload
type screenshotUploadResponse struct {
	ObjectKey   string                       `json:"object_key"`
	DownloadURL string                       `json:"download_url,omitempty"`
	ExpiresAt   *time.Time                   `json:"expires_at,omitempty"`
	Invoice     *appinvoicing.InvoiceResponse `json:"invoice"`
}

// UploadScreenshot stores a payment screenshot and links it to the payment
func (h *InvoiceHandler) UploadScreenshot(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.parseID(c, "paymentID")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		h.BadRequest(c, "Form file 'screenshot' is required")
		return
	}
	if fileHeader.Size > maxScreenshotSize {
		h.BadRequest(c, "Screenshot exceeds the maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxScreenshotSize+1))
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > maxScreenshotSize {
		h.BadRequest(c, "Screenshot exceeds the maximum allowed size")
		return
	}

	invoiceEntity, err := h.invoiceService.GetEntity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := storage.ScreenshotKey(invoiceEntity.Number, fileHeader.Filename)
	if err := h.screenshots.Upload(c.Request.Context(), key, data, contentType); err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := h.invoiceService.AttachScreenshot(c.Request.Context(), id, paymentID, key)
	if err != nil {
		// The object is orphaned if linking fails, clean it up
		_ = h.screenshots.Delete(c.Request.Context(), key)
		h.HandleError(c, err)
		return
	}

	resp := screenshotUploadResponse{ObjectKey: key, Invoice: invoice}
	if url, expiresAt, err := h.screenshots.DownloadURL(c.Request.Context(), key, screenshotURLValid); err == nil {
		resp.DownloadURL = url
		resp.ExpiresAt = &expiresAt
	}

	h.Created(c, resp)
}

// screenshotURLResponse carries a presigned download link
type screenshotURLResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ScreenshotURL returns a time-limited download link for a payment screenshot
func (h *InvoiceHandler) ScreenshotURL(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.parseID(c, "paymentID")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetEntity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	key := ""
	for _, p := range invoice.Payments {
		if p.ID == paymentID {
			key = p.ScreenshotKey
			break
		}
	}
	if key == "" {
		h.NotFound(c, "No screenshot attached to this payment")
		return
	}

	url, expiresAt, err := h.screenshots.DownloadURL(c.Request.Context(), key, screenshotURLValid)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, screenshotURLResponse{DownloadURL: url, ExpiresAt: expiresAt})
}

func (h *InvoiceHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, fmt.Sprintf("Invalid %s", param))
		return uuid.Nil, false
	}
	return id, true
}
