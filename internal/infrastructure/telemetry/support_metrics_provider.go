// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormSupportMetricsProvider implements SupportMetricsProvider using GORM.
// It queries the service_tickets and tasks tables directly for aggregated counts.
type GormSupportMetricsProvider struct {
	db *gorm.DB
}

// NewGormSupportMetricsProvider creates a new GormSupportMetricsProvider.
func NewGormSupportMetricsProvider(db *gorm.DB) *GormSupportMetricsProvider {
	return &GormSupportMetricsProvider{db: db}
}

// GetOpenTicketCount returns the number of service tickets not yet closed.
func (p *GormSupportMetricsProvider) GetOpenTicketCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("service_tickets").
		Where("status <> ?", "closed").
		Count(&count).Error

	return count, err
}

// GetOverdueTaskCount returns the number of unfinished tasks past their due date.
func (p *GormSupportMetricsProvider) GetOverdueTaskCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("tasks").
		Where("due_date IS NOT NULL AND due_date < ?", time.Now()).
		Where("status IN ?", []string{"pending", "in_progress"}).
		Count(&count).Error

	return count, err
}
