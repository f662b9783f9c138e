package partner

import (
	"fmt"
	"regexp"
	"time"

	"github.com/paydesk/backend/internal/domain/shared"
)

// Customer represents a billed party in the partner context
// It is the aggregate root for customer-related operations
type Customer struct {
	shared.BaseEntity
	Name    string
	Address string
	Phone   string
	Email   string
	Notes   string
}

// NewCustomer creates a new customer with required fields
func NewCustomer(name string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// Update updates the customer's name
func (c *Customer) Update(name string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}

	c.Name = name
	c.UpdatedAt = time.Now()

	return nil
}

// SetContact sets the customer's contact information
func (c *Customer) SetContact(phone, email string) error {
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.Phone = phone
	c.Email = email
	c.UpdatedAt = time.Now()

	return nil
}

// SetAddress sets the customer's address
func (c *Customer) SetAddress(address string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	c.Address = address
	c.UpdatedAt = time.Now()

	return nil
}

// SetNotes sets free-form notes on the customer
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
}

// NewCustomerNotFoundError builds the lookup failure for a searched name.
// The searched name travels with the error so chat replies can echo it back.
func NewCustomerNotFoundError(name string) *shared.DomainError {
	return shared.NewDomainError("CUSTOMER_NOT_FOUND", fmt.Sprintf("No customer found matching %q", name))
}

// Validation functions

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	// Basic phone validation - allow digits, spaces, hyphens, parentheses, and plus sign
	validPhone := regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	// Basic email validation
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
