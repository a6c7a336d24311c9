package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crm/backend/internal/domain/shared"
)

// EntityNameQuote is the entity name quotes register under
const EntityNameQuote = "quote"

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent
	case QuoteStatusSent:
		return target == QuoteStatusAccepted || target == QuoteStatusRejected || target == QuoteStatusExpired
	case QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return false // Terminal states
	}
	return false
}

// Quote represents a price quotation issued to a customer
type Quote struct {
	shared.BaseEntity
	QuoteNumber string          `json:"quote_number"`
	CustomerID  int64           `json:"customer_id"`
	Status      QuoteStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ValidUntil  time.Time       `json:"valid_until"`
}

// NewQuote creates an unpersisted draft quote
func NewQuote(quoteNumber string, customerID int64, totalAmount decimal.Decimal, validUntil time.Time) *Quote {
	return &Quote{
		BaseEntity:  shared.NewBaseEntity(),
		QuoteNumber: strings.ToUpper(quoteNumber),
		CustomerID:  customerID,
		Status:      QuoteStatusDraft,
		TotalAmount: totalAmount,
		ValidUntil:  validUntil,
	}
}

// EntityName returns the entity name for quotes
func (q *Quote) EntityName() string {
	return EntityNameQuote
}

// DisplayLabel returns the quote number for display and error messages
func (q *Quote) DisplayLabel() string {
	return q.QuoteNumber
}

// Validate runs the quote's schema checks, reporting every violated field
func (q *Quote) Validate() *shared.ValidationResult {
	result := shared.NewValidationResult()

	if q.QuoteNumber == "" {
		result.AddError("quote_number", "quote number cannot be empty")
	} else if len(q.QuoteNumber) > 50 {
		result.AddError("quote_number", "quote number cannot exceed 50 characters")
	} else if !isReferenceCode(q.QuoteNumber) {
		result.AddError("quote_number", "quote number can only contain letters, numbers, underscores, and hyphens")
	}

	if q.CustomerID <= 0 {
		result.AddError("customer_id", "quote must reference a customer")
	}
	if !q.Status.IsValid() {
		result.AddError("status", fmt.Sprintf("unknown quote status %q", q.Status))
	}
	if q.TotalAmount.IsNegative() {
		result.AddError("total_amount", "total amount cannot be negative")
	}
	if q.ValidUntil.IsZero() {
		result.AddError("valid_until", "validity date cannot be empty")
	}

	return result
}

// TransitionTo moves the quote to the target status, enforcing the status
// graph. A rejected transition returns a BusinessRuleError and leaves the
// quote unchanged.
func (q *Quote) TransitionTo(target QuoteStatus) error {
	if !target.IsValid() {
		return shared.NewBusinessRuleError("quote_status_transition",
			fmt.Sprintf("unknown quote status %q", target))
	}
	if !q.Status.CanTransitionTo(target) {
		return shared.NewBusinessRuleError("quote_status_transition",
			fmt.Sprintf("quote %s cannot move from %s to %s", q.QuoteNumber, q.Status, target))
	}

	q.Status = target
	q.Touch()
	return nil
}

// IsExpired reports whether the validity window has passed
func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.ValidUntil)
}

// isReferenceCode reports whether s is a valid business reference code:
// letters, digits, underscores, and hyphens only.
func isReferenceCode(s string) bool {
	for _, r := range s {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
