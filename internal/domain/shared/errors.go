package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrExtractionFailed  = NewDomainError("EXTRACTION_FAILED", "Could not extract payment details from message")
	ErrCustomerNotFound  = NewDomainError("CUSTOMER_NOT_FOUND", "No customer matches the given name")
	ErrNoUnpaidInvoices  = NewDomainError("NO_UNPAID_INVOICES", "Customer has no unpaid invoices")
	ErrSessionExpired    = NewDomainError("SESSION_EXPIRED", "Pending payment session has expired")
	ErrPersistenceFailed = NewDomainError("PERSISTENCE_FAILED", "Failed to persist changes")
)
