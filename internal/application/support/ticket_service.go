package support

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crm/backend/internal/application/core"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/support"
	"github.com/crm/backend/internal/infrastructure/telemetry"
)

// TicketService handles after-sales service ticket operations. Ticket
// numbers are unique and every ticket must belong to a persisted customer.
type TicketService struct {
	*core.EntityService[*support.Ticket]

	businessMetrics *telemetry.BusinessMetrics
}

// NewTicketService creates a new TicketService
func NewTicketService(
	repo shared.Repository[*support.Ticket],
	customers shared.Repository[*partner.Customer],
	events shared.EventPublisher,
	logger *zap.Logger,
) *TicketService {
	validator := shared.NewValidator(
		shared.NewUniqueFieldRule[*support.Ticket](repo, "unique_ticket_number", "ticket_number",
			func(t *support.Ticket) string { return t.TicketNumber }),
		shared.NewReferenceRule[*support.Ticket](customers, "customer_exists", "customer_id",
			func(t *support.Ticket) (int64, bool) { return t.CustomerID, t.CustomerID > 0 }),
	)

	return &TicketService{
		EntityService: core.NewEntityService(support.EntityNameTicket, repo,
			validator, nil, events, logger),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *TicketService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Transition moves a ticket to the target status. Illegal moves in the
// status graph come back as a BusinessRuleError and leave the stored
// ticket untouched.
func (s *TicketService) Transition(ctx context.Context, id int64, target support.TicketStatus) (*support.Ticket, error) {
	ticket, found, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transition ticket %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("transition ticket %d: %w", id, shared.ErrNotFound)
	}

	if err := ticket.TransitionTo(target); err != nil {
		return nil, err
	}
	return s.Update(ctx, ticket)
}

// Resolve records the solution on an in-progress ticket and hands it to
// the customer for confirmation
func (s *TicketService) Resolve(ctx context.Context, id int64, solution string) (*support.Ticket, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ticket", "resolve")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrEntityID, id)

	ticket, found, err := s.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("resolve ticket %d: %w", id, err)
	}
	if !found {
		telemetry.RecordError(span, shared.ErrNotFound)
		return nil, fmt.Errorf("resolve ticket %d: %w", id, shared.ErrNotFound)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTicketNumber, ticket.TicketNumber,
		telemetry.SpanAttrPriority, ticket.Priority.String(),
	)

	if err := ticket.Resolve(solution); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resolved, err := s.Update(ctx, ticket)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordTicketResolved(ctx, resolved.Priority.String())
	}

	telemetry.AddEvent(span, "ticket_resolved",
		telemetry.SpanAttrPriority, resolved.Priority.String(),
	)
	return resolved, nil
}
