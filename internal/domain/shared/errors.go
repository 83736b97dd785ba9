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
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrValidationFailed     = NewDomainError("VALIDATION_FAILED", "Input failed validation")
	ErrMissingRequiredField = NewDomainError("MISSING_REQUIRED_FIELD", "A required field is missing")
	ErrDuplicateSubmission  = NewDomainError("DUPLICATE_SUBMISSION", "Document already exists in the accounting system")
	ErrExternalService      = NewDomainError("EXTERNAL_SERVICE", "External service call failed")
	ErrUnauthorized         = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
