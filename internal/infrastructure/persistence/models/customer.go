package models

import (
	"github.com/paydesk/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer entity
type CustomerModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	Address string `gorm:"type:text"`
	Phone   string `gorm:"type:varchar(50)"`
	Email   string `gorm:"type:varchar(255)"`
	Notes   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Address:    m.Address,
		Phone:      m.Phone,
		Email:      m.Email,
		Notes:      m.Notes,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer entity
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:    c.Name,
		Address: c.Address,
		Phone:   c.Phone,
		Email:   c.Email,
		Notes:   c.Notes,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
