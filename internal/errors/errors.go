// Package errors provides the error taxonomy of the record store.
// Every store operation returns an *AppError so callers can branch on the
// Kind (constraint, referential, not found, ...) or the specific Code
// without parsing driver messages.
package errors

import "errors"

// Kind classifies an AppError.
type Kind string

const (
	// KindConstraint covers uniqueness, non-null and missing required relationships.
	KindConstraint Kind = "constraint"
	// KindReferential covers deletes of rows that are still referenced.
	KindReferential Kind = "referential"
	KindNotFound    Kind = "not_found"
	KindInvalid     Kind = "invalid"
	KindInternal    Kind = "internal"
)

// AppError represents a structured store error with an error code,
// human-readable message, kind, and optional internal error.
type AppError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Kind     Kind   `json:"kind"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code, so a wrapped copy of a sentinel is still
// errors.Is-equal to the sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/kind but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Kind:     sentinel.Kind,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Kind:     sentinel.Kind,
		Internal: sentinel.Internal,
	}
}

// KindOf returns the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsConstraintViolation reports whether err is a uniqueness, non-null or
// required-relationship violation.
func IsConstraintViolation(err error) bool { return err != nil && KindOf(err) == KindConstraint }

// IsReferentialViolation reports whether err rejected a delete of a referenced row.
func IsReferentialViolation(err error) bool { return err != nil && KindOf(err) == KindReferential }

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", Kind: KindInvalid}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", Kind: KindInternal}
)

// Constraint violations.
var (
	ErrRequiredField         = &AppError{Code: "REQUIRED_FIELD", Message: "A required field is missing", Kind: KindConstraint}
	ErrUniqueViolation       = &AppError{Code: "UNIQUE_VIOLATION", Message: "A unique constraint was violated", Kind: KindConstraint}
	ErrReferenceNotFound     = &AppError{Code: "REFERENCE_NOT_FOUND", Message: "A referenced record does not exist", Kind: KindConstraint}
	ErrDuplicateAdvisor      = &AppError{Code: "DUPLICATE_ADVISOR_EMAIL", Message: "An advisor with this email already exists", Kind: KindConstraint}
	ErrDuplicateClient       = &AppError{Code: "DUPLICATE_CLIENT_EMAIL", Message: "A client with this email already exists", Kind: KindConstraint}
	ErrPortfolioExists       = &AppError{Code: "PORTFOLIO_EXISTS", Message: "This client already has a portfolio", Kind: KindConstraint}
	ErrDuplicateSecurityType = &AppError{Code: "DUPLICATE_SECURITY_TYPE", Message: "A security type with this name already exists", Kind: KindConstraint}
)

// Referential-integrity violations.
var (
	ErrReferenced        = &AppError{Code: "STILL_REFERENCED", Message: "Record is still referenced", Kind: KindReferential}
	ErrAdvisorHasClients = &AppError{Code: "ADVISOR_HAS_CLIENTS", Message: "Advisor still has clients; reassign them first", Kind: KindReferential}
	ErrSecurityTypeInUse = &AppError{Code: "SECURITY_TYPE_IN_USE", Message: "Security type is used by existing securities; reassign them first", Kind: KindReferential}
)

// Reassignment errors.
var (
	ErrSameAdvisor      = &AppError{Code: "SAME_ADVISOR", Message: "Client already belongs to this advisor", Kind: KindInvalid}
	ErrSameSecurityType = &AppError{Code: "SAME_SECURITY_TYPE", Message: "Source and target security types are the same", Kind: KindInvalid}
)

// Not-found errors.
var (
	ErrAdvisorNotFound      = &AppError{Code: "ADVISOR_NOT_FOUND", Message: "Advisor not found", Kind: KindNotFound}
	ErrClientNotFound       = &AppError{Code: "CLIENT_NOT_FOUND", Message: "Client not found", Kind: KindNotFound}
	ErrPortfolioNotFound    = &AppError{Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", Kind: KindNotFound}
	ErrSecurityNotFound     = &AppError{Code: "SECURITY_NOT_FOUND", Message: "Security not found", Kind: KindNotFound}
	ErrSecurityTypeNotFound = &AppError{Code: "SECURITY_TYPE_NOT_FOUND", Message: "Security type not found", Kind: KindNotFound}
)
