package persistence

import (
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/support"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

var _ shared.Repository[*support.Task] = (*GormRepository[*support.Task, models.TaskRecord])(nil)

// NewTaskRepository creates the follow-up task repository with its column
// mapping.
func NewTaskRepository(db *gorm.DB) *GormRepository[*support.Task, models.TaskRecord] {
	return NewGormRepository(db, Mapping[*support.Task, models.TaskRecord]{
		Searchable: []string{"title"},
		Filterable: map[string]string{
			"status":      "status",
			"priority":    "priority",
			"customer_id": "customer_id",
			"supplier_id": "supplier_id",
		},
		Sortable: map[string]string{
			"id":         "id",
			"title":      "title",
			"status":     "status",
			"priority":   "priority",
			"due_date":   "due_date",
			"created_at": "created_at",
			"updated_at": "updated_at",
		},
		ToRecord: models.TaskRecordFromDomain,
		FromRecord: func(record models.TaskRecord) *support.Task {
			return record.ToDomain()
		},
	})
}
