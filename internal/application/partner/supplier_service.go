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

// SupplierService handles supplier lifecycle operations. Suppliers share
// the customer tier mechanics but start at the lowest tier instead of the
// normal one.
type SupplierService struct {
	*core.EntityService[*partner.Supplier]

	businessMetrics *telemetry.BusinessMetrics
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(repo shared.Repository[*partner.Supplier], events shared.EventPublisher, logger *zap.Logger) *SupplierService {
	validator := shared.NewValidator(
		shared.NewUniqueFieldRule[*partner.Supplier](repo, "unique_phone", "phone",
			func(s *partner.Supplier) string { return s.Phone }),
		shared.NewUniqueFieldRule[*partner.Supplier](repo, "unique_email", "email",
			func(s *partner.Supplier) string { return s.Email }),
	)

	return &SupplierService{
		EntityService: core.NewEntityService(partner.EntityNameSupplier, repo,
			validator, partner.NewSupplierLevelStrategy(), events, logger),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SupplierService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create persists a new supplier and counts the registration
func (s *SupplierService) Create(ctx context.Context, supplier *partner.Supplier) (*partner.Supplier, error) {
	created, err := s.EntityService.Create(ctx, supplier)
	if err != nil {
		return nil, err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPartnerCreated(ctx, partner.EntityNameSupplier)
	}
	return created, nil
}

// SupplierStatistics summarizes the supplier base
type SupplierStatistics struct {
	Total   int64            `json:"total"`
	ByLevel map[string]int64 `json:"by_level"`
}

// Statistics reports the supplier total and the count per tier
func (s *SupplierService) Statistics(ctx context.Context) (SupplierStatistics, error) {
	stats := SupplierStatistics{ByLevel: make(map[string]int64)}

	total, err := s.Count(ctx)
	if err != nil {
		return SupplierStatistics{}, fmt.Errorf("supplier statistics: %w", err)
	}
	stats.Total = total

	for _, level := range shared.Levels() {
		query := shared.NewSearchQuery().WithFilter("level", level.Code()).WithPage(0, 1)
		result, err := s.Search(ctx, query)
		if err != nil {
			return SupplierStatistics{}, fmt.Errorf("supplier statistics: %w", err)
		}
		stats.ByLevel[level.Code()] = result.TotalCount
	}

	return stats, nil
}
