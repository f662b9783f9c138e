package dto

import "net/http"

// Error codes shared between domain errors and HTTP responses.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"

	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidState  = "INVALID_STATE"

	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"

	// Payment recording flow
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeCustomerNotFound  = "CUSTOMER_NOT_FOUND"
	ErrCodeNoUnpaidInvoices  = "NO_UNPAID_INVOICES"
	ErrCodeSessionExpired    = "SESSION_EXPIRED"
	ErrCodePersistenceFailed = "PERSISTENCE_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Domain errors carry these codes; anything unknown maps to 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeExtractionFailed:  http.StatusUnprocessableEntity,
	ErrCodeCustomerNotFound:  http.StatusNotFound,
	ErrCodeNoUnpaidInvoices:  http.StatusUnprocessableEntity,
	ErrCodeSessionExpired:    http.StatusGone,
	ErrCodePersistenceFailed: http.StatusInternalServerError,

	// Validation failures raised by domain constructors
	"INVALID_INVOICE_NUMBER": http.StatusBadRequest,
	"INVALID_BUYER":          http.StatusBadRequest,
	"INVALID_DUE_DATE":       http.StatusBadRequest,
	"INVALID_DATE":           http.StatusBadRequest,
	"INVALID_ITEM":           http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"INVALID_NAME":           http.StatusBadRequest,
	"INVALID_ADDRESS":        http.StatusBadRequest,
	"INVALID_PHONE":          http.StatusBadRequest,
	"INVALID_EMAIL":          http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
