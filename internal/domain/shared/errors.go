package shared

import (
	"fmt"
	"strings"
)

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

// Common domain errors. Repositories and services wrap these with the
// failing operation's context via fmt.Errorf("...: %w", err) so errors.Is
// still matches the sentinel.
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrConflict      = NewDomainError("CONFLICT", "A unique constraint was violated")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConnection    = NewDomainError("CONNECTION_ERROR", "Database connection unavailable")
	ErrStorage       = NewDomainError("STORAGE_ERROR", "Storage operation failed")
	ErrEventHandling = NewDomainError("EVENT_HANDLING", "One or more event handlers failed")
)

// FieldError describes a single schema violation on one field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates every schema violation found on an entity so
// the caller gets the complete list of fields to fix in one round trip.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a validation error from field violations
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// HasField reports whether a violation was recorded for the given field
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// BusinessRuleError reports a domain-policy violation with enough context
// for the caller to react: which rule rejected the operation and why.
type BusinessRuleError struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// NewBusinessRuleError creates a new business rule error
func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
	}
}
