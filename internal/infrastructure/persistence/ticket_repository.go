package persistence

import (
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/support"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

var _ shared.Repository[*support.Ticket] = (*GormRepository[*support.Ticket, models.TicketRecord])(nil)

// NewTicketRepository creates the service ticket repository with its column
// mapping. The keyword search scans the ticket number and problem category.
func NewTicketRepository(db *gorm.DB) *GormRepository[*support.Ticket, models.TicketRecord] {
	return NewGormRepository(db, Mapping[*support.Ticket, models.TicketRecord]{
		Searchable: []string{"ticket_number", "problem_category"},
		Filterable: map[string]string{
			"ticket_number":    "ticket_number",
			"customer_id":      "customer_id",
			"status":           "status",
			"priority":         "priority",
			"problem_category": "problem_category",
		},
		Sortable: map[string]string{
			"id":            "id",
			"ticket_number": "ticket_number",
			"status":        "status",
			"priority":      "priority",
			"created_at":    "created_at",
			"updated_at":    "updated_at",
		},
		ToRecord: models.TicketRecordFromDomain,
		FromRecord: func(record models.TicketRecord) *support.Ticket {
			return record.ToDomain()
		},
	})
}
