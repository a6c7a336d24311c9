package persistence

import (
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

var _ shared.Repository[*partner.Supplier] = (*GormRepository[*partner.Supplier, models.SupplierRecord])(nil)

// NewSupplierRepository creates the supplier repository with its column
// mapping.
func NewSupplierRepository(db *gorm.DB) *GormRepository[*partner.Supplier, models.SupplierRecord] {
	return NewGormRepository(db, Mapping[*partner.Supplier, models.SupplierRecord]{
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
		ToRecord: models.SupplierRecordFromDomain,
		FromRecord: func(record models.SupplierRecord) *partner.Supplier {
			return record.ToDomain()
		},
	})
}
