package persistence

import (
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

var _ shared.Repository[*partner.Customer] = (*GormRepository[*partner.Customer, models.CustomerRecord])(nil)

// NewCustomerRepository creates the customer repository with its column
// mapping. The keyword search scans name, contact person, phone and email.
func NewCustomerRepository(db *gorm.DB) *GormRepository[*partner.Customer, models.CustomerRecord] {
	return NewGormRepository(db, Mapping[*partner.Customer, models.CustomerRecord]{
		Searchable: []string{"name", "contact_person", "phone", "email"},
		Filterable: map[string]string{
			"name":    "name",
			"phone":   "phone",
			"email":   "email",
			"level":   "level",
			"address": "address",
		},
		Sortable: map[string]string{
			"id":         "id",
			"name":       "name",
			"level":      "level",
			"created_at": "created_at",
			"updated_at": "updated_at",
		},
		ToRecord: models.CustomerRecordFromDomain,
		FromRecord: func(record models.CustomerRecord) *partner.Customer {
			return record.ToDomain()
		},
	})
}
