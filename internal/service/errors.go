package service

// Error codes returned by service operations.
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidation       = "VALIDATION"
	ErrCodeNoActivePolicy   = "NO_ACTIVE_POLICY"
	ErrCodeNoProviderTarget = "NO_PROVIDER_TARGET"
	ErrCodeInternal         = "INTERNAL"
)

// ServiceError represents a business logic error with a code for HTTP mapping.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: message}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeConflict, Message: message}
}

func NewValidationError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeValidation, Message: message}
}

func NewNoActivePolicyError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeNoActivePolicy, Message: message}
}

func NewNoProviderTargetError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeNoProviderTarget, Message: message}
}

func NewInternalError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeInternal, Message: message}
}
