package persistence

import (
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/trade"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

var _ shared.Repository[*trade.Quote] = (*GormRepository[*trade.Quote, models.QuoteRecord])(nil)

// NewQuoteRepository creates the quote repository with its column mapping.
func NewQuoteRepository(db *gorm.DB) *GormRepository[*trade.Quote, models.QuoteRecord] {
	return NewGormRepository(db, Mapping[*trade.Quote, models.QuoteRecord]{
		Searchable: []string{"quote_number"},
		Filterable: map[string]string{
			"quote_number": "quote_number",
			"customer_id":  "customer_id",
			"status":       "status",
		},
		Sortable: map[string]string{
			"id":           "id",
			"quote_number": "quote_number",
			"status":       "status",
			"total_amount": "total_amount",
			"valid_until":  "valid_until",
			"created_at":   "created_at",
			"updated_at":   "updated_at",
		},
		ToRecord: models.QuoteRecordFromDomain,
		FromRecord: func(record models.QuoteRecord) *trade.Quote {
			return record.ToDomain()
		},
	})
}
