package models

import (
	"time"

	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Line items and payments are embedded as JSONB; an invoice is always
// loaded and saved whole.
type InvoiceModel struct {
	BaseModel
	Number       string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	InvoiceDate  time.Time               `gorm:"not null;index"`
	DueDate      time.Time               `gorm:"not null"`
	CustomerID   *uuid.UUID              `gorm:"type:uuid;index"`
	BuyerName    string                  `gorm:"type:varchar(200);not null"`
	BuyerAddress string                  `gorm:"type:text"`
	BuyerPhone   string                  `gorm:"type:varchar(50)"`
	BuyerEmail   string                  `gorm:"type:varchar(255)"`
	Items        invoicing.InvoiceItems  `gorm:"type:jsonb;default:'[]'"`
	Payments     invoicing.Payments      `gorm:"type:jsonb;default:'[]'"`
	Total        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	AmountPaid   decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Balance      decimal.Decimal         `gorm:"type:decimal(18,4);not null;index"`
	Status       invoicing.PaymentStatus `gorm:"type:varchar(20);not null;default:'Unpaid';index"`
	Notes        string                  `gorm:"type:text"`
	Terms        string                  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
// Derived fields are rederived from items and payments rather than trusted
// from the stored columns, so a row whose cached totals drifted (a crashed
// write, a manual edit) comes back consistent.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseEntity:  m.BaseModel.ToDomain(),
		Number:      m.Number,
		InvoiceDate: m.InvoiceDate,
		DueDate:     m.DueDate,
		CustomerID:  m.CustomerID,
		Buyer: invoicing.BuyerDetails{
			Name:    m.BuyerName,
			Address: m.BuyerAddress,
			Phone:   m.BuyerPhone,
			Email:   m.BuyerEmail,
		},
		Items:    m.Items,
		Payments: m.Payments,
		Notes:    m.Notes,
		Terms:    m.Terms,
	}
	inv.Recalculate()
	return inv
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice aggregate
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:       inv.Number,
		InvoiceDate:  inv.InvoiceDate,
		DueDate:      inv.DueDate,
		CustomerID:   inv.CustomerID,
		BuyerName:    inv.Buyer.Name,
		BuyerAddress: inv.Buyer.Address,
		BuyerPhone:   inv.Buyer.Phone,
		BuyerEmail:   inv.Buyer.Email,
		Items:        inv.Items,
		Payments:     inv.Payments,
		Total:        inv.Total,
		AmountPaid:   inv.AmountPaid,
		Balance:      inv.Balance,
		Status:       inv.Status,
		Notes:        inv.Notes,
		Terms:        inv.Terms,
	}
	m.FromDomainBaseEntity(inv.BaseEntity)
	return m
}
