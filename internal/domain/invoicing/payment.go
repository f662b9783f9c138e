package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/paydesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodGPay PaymentMethod = "GPay" // Google Pay / UPI
	PaymentMethodCash PaymentMethod = "Cash" // Cash payment
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodGPay, PaymentMethodCash:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod parses a string into a PaymentMethod. Matching is
// case-insensitive so transports can use lowercase identifiers.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(s) {
	case "gpay":
		return PaymentMethodGPay, nil
	case "cash":
		return PaymentMethodCash, nil
	}
	return "", shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be 'GPay' or 'Cash'")
}

// Payment records one payment received against an invoice
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Method        PaymentMethod   `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ScreenshotKey string          `json:"screenshot_key,omitempty"`
}

// NewPayment creates a new payment dated now
func NewPayment(amount valueobject.Money, method PaymentMethod, reference string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be 'GPay' or 'Cash'")
	}

	return &Payment{
		ID:        uuid.New(),
		Amount:    amount.Amount(),
		Date:      time.Now(),
		Method:    method,
		Reference: reference,
	}, nil
}

// GetAmountMoney returns the amount as Money value object
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.Amount)
}

// Payments is a slice of Payment that implements GORM Scanner/Valuer for JSONB storage
type Payments []Payment

// Value implements driver.Valuer for JSONB storage
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB reads
func (p *Payments) Scan(value interface{}) error {
	if value == nil {
		*p = Payments{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Payments: unsupported type")
	}

	if len(bytes) == 0 {
		*p = Payments{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}
