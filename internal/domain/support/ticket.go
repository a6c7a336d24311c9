package support

import (
	"fmt"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// EntityNameTicket is the entity name service tickets register under
const EntityNameTicket = "service_ticket"

// TicketStatus represents the status of an after-sales service ticket
type TicketStatus string

const (
	TicketStatusNew                 TicketStatus = "new"
	TicketStatusInProgress          TicketStatus = "in_progress"
	TicketStatusPendingConfirmation TicketStatus = "pending_confirmation"
	TicketStatusClosed              TicketStatus = "closed"
)

// IsValid checks if the status is a known TicketStatus
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusPendingConfirmation, TicketStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of TicketStatus
func (s TicketStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A ticket awaiting customer confirmation may fall back to in_progress when
// the customer rejects the solution.
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	switch s {
	case TicketStatusNew:
		return target == TicketStatusInProgress || target == TicketStatusClosed
	case TicketStatusInProgress:
		return target == TicketStatusPendingConfirmation || target == TicketStatusClosed
	case TicketStatusPendingConfirmation:
		return target == TicketStatusClosed || target == TicketStatusInProgress
	case TicketStatusClosed:
		return false // Terminal state
	}
	return false
}

// Ticket represents an after-sales service ticket raised by a customer
type Ticket struct {
	shared.BaseEntity
	TicketNumber    string       `json:"ticket_number"`
	CustomerID      int64        `json:"customer_id"`
	ProblemCategory string       `json:"problem_category"`
	Description     string       `json:"description"`
	SolutionMethod  string       `json:"solution_method"`
	Status          TicketStatus `json:"status"`
	Priority        Priority     `json:"priority"`
}

// NewTicket creates an unpersisted ticket in the new status
func NewTicket(ticketNumber string, customerID int64, problemCategory, description string) *Ticket {
	return &Ticket{
		BaseEntity:      shared.NewBaseEntity(),
		TicketNumber:    strings.ToUpper(ticketNumber),
		CustomerID:      customerID,
		ProblemCategory: problemCategory,
		Description:     description,
		Status:          TicketStatusNew,
		Priority:        PriorityMedium,
	}
}

// EntityName returns the entity name for service tickets
func (t *Ticket) EntityName() string {
	return EntityNameTicket
}

// DisplayLabel returns the ticket number for display and error messages
func (t *Ticket) DisplayLabel() string {
	return t.TicketNumber
}

// Validate runs the ticket's schema checks, reporting every violated field
func (t *Ticket) Validate() *shared.ValidationResult {
	result := shared.NewValidationResult()

	if t.TicketNumber == "" {
		result.AddError("ticket_number", "ticket number cannot be empty")
	} else if len(t.TicketNumber) > 50 {
		result.AddError("ticket_number", "ticket number cannot exceed 50 characters")
	}
	if t.CustomerID <= 0 {
		result.AddError("customer_id", "ticket must reference a customer")
	}
	if strings.TrimSpace(t.ProblemCategory) == "" {
		result.AddError("problem_category", "problem category cannot be empty")
	} else if len(t.ProblemCategory) > 100 {
		result.AddError("problem_category", "problem category cannot exceed 100 characters")
	}
	if strings.TrimSpace(t.Description) == "" {
		result.AddError("description", "problem description cannot be empty")
	} else if len(t.Description) > 2000 {
		result.AddError("description", "problem description cannot exceed 2000 characters")
	}
	if len(t.SolutionMethod) > 2000 {
		result.AddError("solution_method", "solution cannot exceed 2000 characters")
	}
	if !t.Status.IsValid() {
		result.AddError("status", fmt.Sprintf("unknown ticket status %q", t.Status))
	}
	if !t.Priority.IsValid() {
		result.AddError("priority", fmt.Sprintf("unknown priority %q", t.Priority))
	}

	return result
}

// TransitionTo moves the ticket to the target status, enforcing the status
// graph. A rejected transition returns a BusinessRuleError and leaves the
// ticket unchanged.
func (t *Ticket) TransitionTo(target TicketStatus) error {
	if !target.IsValid() {
		return shared.NewBusinessRuleError("ticket_status_transition",
			fmt.Sprintf("unknown ticket status %q", target))
	}
	if !t.Status.CanTransitionTo(target) {
		return shared.NewBusinessRuleError("ticket_status_transition",
			fmt.Sprintf("ticket %s cannot move from %s to %s", t.TicketNumber, t.Status, target))
	}

	t.Status = target
	t.Touch()
	return nil
}

// Resolve records the solution and hands the ticket to the customer for
// confirmation
func (t *Ticket) Resolve(solution string) error {
	if strings.TrimSpace(solution) == "" {
		return shared.NewBusinessRuleError("ticket_resolution",
			fmt.Sprintf("ticket %s cannot be resolved without a solution", t.TicketNumber))
	}
	if err := t.TransitionTo(TicketStatusPendingConfirmation); err != nil {
		return err
	}
	t.SolutionMethod = solution
	return nil
}
