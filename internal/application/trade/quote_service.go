package trade

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crm/backend/internal/application/core"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/trade"
	"github.com/crm/backend/internal/infrastructure/telemetry"
)

// QuoteService handles quote lifecycle operations. Beyond the generic
// lifecycle it enforces quote number uniqueness, verifies the quoted
// customer exists, and walks quotes through their status graph.
type QuoteService struct {
	*core.EntityService[*trade.Quote]

	businessMetrics *telemetry.BusinessMetrics
}

// NewQuoteService creates a new QuoteService. The customer repository backs
// the customer existence rule.
func NewQuoteService(
	repo shared.Repository[*trade.Quote],
	customers shared.Repository[*partner.Customer],
	events shared.EventPublisher,
	logger *zap.Logger,
) *QuoteService {
	validator := shared.NewValidator(
		shared.NewUniqueFieldRule[*trade.Quote](repo, "unique_quote_number", "quote_number",
			func(q *trade.Quote) string { return q.QuoteNumber }),
		shared.NewReferenceRule[*trade.Quote](customers, "customer_exists", "customer_id",
			func(q *trade.Quote) (int64, bool) { return q.CustomerID, q.CustomerID > 0 }),
	)

	return &QuoteService{
		EntityService: core.NewEntityService(trade.EntityNameQuote, repo,
			validator, nil, events, logger),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *QuoteService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create persists a new quote and counts it, with its amount, toward the
// quote volume metrics
func (s *QuoteService) Create(ctx context.Context, quote *trade.Quote) (*trade.Quote, error) {
	created, err := s.EntityService.Create(ctx, quote)
	if err != nil {
		return nil, err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordQuoteWithAmount(ctx, created.TotalAmount)
	}
	return created, nil
}

// Transition moves a quote to the target status. Illegal moves in the
// status graph come back as a BusinessRuleError and leave the stored quote
// untouched.
func (s *QuoteService) Transition(ctx context.Context, id int64, target trade.QuoteStatus) (*trade.Quote, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "transition")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrEntityID, id,
		telemetry.SpanAttrStatus, string(target),
	)

	quote, found, err := s.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("transition quote %d: %w", id, err)
	}
	if !found {
		telemetry.RecordError(span, shared.ErrNotFound)
		return nil, fmt.Errorf("transition quote %d: %w", id, shared.ErrNotFound)
	}

	from := quote.Status
	telemetry.SetAttributes(span,
		telemetry.SpanAttrQuoteNumber, quote.QuoteNumber,
		telemetry.SpanAttrAmount, quote.TotalAmount.String(),
	)

	if err := quote.TransitionTo(target); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	updated, err := s.Update(ctx, quote)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "quote_status_changed",
		"from", string(from),
		"to", string(target),
	)
	return updated, nil
}
