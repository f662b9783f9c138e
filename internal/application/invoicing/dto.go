package invoicing

import (
	"time"

	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is one invoice line in a create/update request.
// The line amount is always recomputed server-side from quantity and rate.
type ItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	Rate        decimal.Decimal `json:"rate" binding:"required,gte=0"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	Number       string        `json:"number" binding:"required,min=1,max=50"`
	InvoiceDate  string        `json:"invoice_date" binding:"required"` // YYYY-MM-DD
	DueDate      string        `json:"due_date" binding:"required"`     // YYYY-MM-DD
	CustomerID   *uuid.UUID    `json:"customer_id"`
	BuyerName    string        `json:"buyer_name" binding:"max=200"`
	BuyerAddress string        `json:"buyer_address" binding:"max=500"`
	BuyerPhone   string        `json:"buyer_phone" binding:"max=50"`
	BuyerEmail   string        `json:"buyer_email" binding:"omitempty,email,max=200"`
	Items        []ItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes        string        `json:"notes"`
	Terms        string        `json:"terms"`
}

// UpdateInvoiceRequest represents a request to update an invoice.
// Items, when present, replace the existing lines wholesale.
type UpdateInvoiceRequest struct {
	InvoiceDate *string        `json:"invoice_date"`
	DueDate     *string        `json:"due_date"`
	Items       *[]ItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	Notes       *string        `json:"notes"`
	Terms       *string        `json:"terms"`
}

// AddPaymentRequest represents a request to record a payment on an invoice
type AddPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Method    string          `json:"method" binding:"required,oneof=GPay Cash"`
	Reference string          `json:"reference" binding:"max=200"`
	Notes     string          `json:"notes"`
}

// InvoiceListFilter represents filtering options for listing invoices
type InvoiceListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status" binding:"omitempty,oneof=Unpaid Partial Paid"`
	Search   string `form:"search"`
}

// ItemResponse represents an invoice line in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Method        string          `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ScreenshotKey string          `json:"screenshot_key,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID           uuid.UUID         `json:"id"`
	Number       string            `json:"number"`
	InvoiceDate  time.Time         `json:"invoice_date"`
	DueDate      time.Time         `json:"due_date"`
	CustomerID   *uuid.UUID        `json:"customer_id,omitempty"`
	BuyerName    string            `json:"buyer_name"`
	BuyerAddress string            `json:"buyer_address,omitempty"`
	BuyerPhone   string            `json:"buyer_phone,omitempty"`
	BuyerEmail   string            `json:"buyer_email,omitempty"`
	Items        []ItemResponse    `json:"items"`
	Payments     []PaymentResponse `json:"payments"`
	Total        decimal.Decimal   `json:"total"`
	AmountPaid   decimal.Decimal   `json:"amount_paid"`
	Balance      decimal.Decimal   `json:"balance"`
	Status       string            `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	Terms        string            `json:"terms,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// PaymentPlan describes which invoice an incoming payment would settle,
// before anything is persisted
type PaymentPlan struct {
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceTotal  decimal.Decimal `json:"invoice_total"`
	Balance       decimal.Decimal `json:"balance"`
	Amount        decimal.Decimal `json:"amount"`
	Overpayment   bool            `json:"overpayment"`
}

// RecordPaymentResult is the outcome of applying a payment
type RecordPaymentResult struct {
	Invoice     InvoiceResponse `json:"invoice"`
	Payment     PaymentResponse `json:"payment"`
	Overpayment bool            `json:"overpayment"`
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(p *invoicing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		Amount:        p.Amount,
		Date:          p.Date,
		Method:        p.Method.String(),
		Reference:     p.Reference,
		Notes:         p.Notes,
		ScreenshotKey: p.ScreenshotKey,
	}
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	items := make([]ItemResponse, 0, len(inv.Items))
	for i := range inv.Items {
		items = append(items, ItemResponse{
			ID:          inv.Items[i].ID,
			Description: inv.Items[i].Description,
			Quantity:    inv.Items[i].Quantity,
			Rate:        inv.Items[i].Rate,
			Amount:      inv.Items[i].Amount,
		})
	}

	payments := make([]PaymentResponse, 0, len(inv.Payments))
	for i := range inv.Payments {
		payments = append(payments, ToPaymentResponse(&inv.Payments[i]))
	}

	return InvoiceResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		InvoiceDate:  inv.InvoiceDate,
		DueDate:      inv.DueDate,
		CustomerID:   inv.CustomerID,
		BuyerName:    inv.Buyer.Name,
		BuyerAddress: inv.Buyer.Address,
		BuyerPhone:   inv.Buyer.Phone,
		BuyerEmail:   inv.Buyer.Email,
		Items:        items,
		Payments:     payments,
		Total:        inv.Total,
		AmountPaid:   inv.AmountPaid,
		Balance:      inv.Balance,
		Status:       inv.Status.String(),
		Notes:        inv.Notes,
		Terms:        inv.Terms,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
}
