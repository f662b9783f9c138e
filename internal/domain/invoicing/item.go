package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one line on an invoice.
// Amount is always quantity * rate; stored values are recomputed on every
// mutation and never trusted from input.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewInvoiceItem creates a line item with its amount derived from quantity and rate
func NewInvoiceItem(description string, quantity, rate decimal.Decimal) (*InvoiceItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.IsNegative() || quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item rate cannot be negative")
	}

	item := &InvoiceItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		Rate:        rate,
	}
	item.Recalculate()
	return item, nil
}

// Recalculate rederives the line amount from quantity and rate
func (i *InvoiceItem) Recalculate() {
	i.Amount = i.Quantity.Mul(i.Rate)
}

// InvoiceItems is a slice of InvoiceItem that implements GORM Scanner/Valuer for JSONB storage
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer for JSONB storage
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner for JSONB reads
func (items *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}
