package models

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
)

// BaseRecord provides common persistence fields for all records.
// It maps to the domain's BaseEntity; the id is storage-assigned.
type BaseRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RecordID returns the storage-assigned identifier, zero before insert.
func (r BaseRecord) RecordID() int64 {
	return r.ID
}

// ToDomain converts BaseRecord to a domain BaseEntity
func (r *BaseRecord) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// FromDomain populates BaseRecord from a domain BaseEntity
func (r *BaseRecord) FromDomain(e shared.BaseEntity) {
	r.ID = e.ID
	r.CreatedAt = e.CreatedAt
	r.UpdatedAt = e.UpdatedAt
}

// All returns one instance of every record type, in dependency order,
// for schema migration.
func All() []any {
	return []any{
		&CustomerRecord{},
		&SupplierRecord{},
		&QuoteRecord{},
		&TaskRecord{},
		&TicketRecord{},
	}
}
