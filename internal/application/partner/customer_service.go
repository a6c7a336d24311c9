package partner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crm/backend/internal/application/core"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/telemetry"
)

// CustomerService handles customer lifecycle operations. The generic
// lifecycle comes from core.EntityService; this service contributes the
// customer business rules (unique phone and email), the tier strategy that
// starts new customers at the normal level, and reporting.
type CustomerService struct {
	*core.EntityService[*partner.Customer]

	businessMetrics *telemetry.BusinessMetrics
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(repo shared.Repository[*partner.Customer], events shared.EventPublisher, logger *zap.Logger) *CustomerService {
	validator := shared.NewValidator(
		shared.NewUniqueFieldRule[*partner.Customer](repo, "unique_phone", "phone",
			func(c *partner.Customer) string { return c.Phone }),
		shared.NewUniqueFieldRule[*partner.Customer](repo, "unique_email", "email",
			func(c *partner.Customer) string { return c.Email }),
	)

	return &CustomerService{
		EntityService: core.NewEntityService(partner.EntityNameCustomer, repo,
			validator, partner.NewCustomerLevelStrategy(), events, logger),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *CustomerService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create persists a new customer and counts the registration
func (s *CustomerService) Create(ctx context.Context, customer *partner.Customer) (*partner.Customer, error) {
	created, err := s.EntityService.Create(ctx, customer)
	if err != nil {
		return nil, err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPartnerCreated(ctx, partner.EntityNameCustomer)
	}
	return created, nil
}

// CustomerStatistics summarizes the customer base
type CustomerStatistics struct {
	Total   int64            `json:"total"`
	ByLevel map[string]int64 `json:"by_level"`
}

// Statistics reports the customer total and the count per tier
func (s *CustomerService) Statistics(ctx context.Context) (CustomerStatistics, error) {
	stats := CustomerStatistics{ByLevel: make(map[string]int64)}

	total, err := s.Count(ctx)
	if err != nil {
		return CustomerStatistics{}, fmt.Errorf("customer statistics: %w", err)
	}
	stats.Total = total

	for _, level := range shared.Levels() {
		query := shared.NewSearchQuery().WithFilter("level", level.Code()).WithPage(0, 1)
		result, err := s.Search(ctx, query)
		if err != nil {
			return CustomerStatistics{}, fmt.Errorf("customer statistics: %w", err)
		}
		stats.ByLevel[level.Code()] = result.TotalCount
	}

	return stats, nil
}
