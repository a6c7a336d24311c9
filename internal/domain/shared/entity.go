package shared

import (
	"fmt"
	"time"
)

// Entity is the contract every business record type implements: identity,
// naming, timestamps, and intrinsic schema validation.
type Entity interface {
	// GetID returns the storage-assigned identifier. The boolean is false
	// for entities that have never been persisted.
	GetID() (int64, bool)
	// SetID assigns the identifier exactly once, when the storage layer
	// generates it. Calling it on an already-identified entity panics.
	SetID(id int64)
	// EntityName returns the table/collection name constant for the type.
	EntityName() string
	// DisplayLabel returns a human-readable label derived from the fields.
	DisplayLabel() string
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
	// Touch refreshes the updated_at timestamp.
	Touch()
	// Validate runs the entity's schema checks and reports every violated
	// field, not just the first.
	Validate() *ValidationResult
}

// BaseEntity provides identity and timestamp fields for all entities.
// A zero ID means the entity has never been persisted.
type BaseEntity struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBaseEntity creates an unpersisted base entity with both timestamps set
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the identifier and whether it has been assigned
func (e *BaseEntity) GetID() (int64, bool) {
	return e.ID, e.ID != 0
}

// SetID assigns the storage-generated identifier. It panics when the entity
// already carries one: identifiers are immutable once assigned.
func (e *BaseEntity) SetID(id int64) {
	if e.ID != 0 {
		panic(fmt.Sprintf("shared: SetID(%d) on entity already identified as %d", id, e.ID))
	}
	if id <= 0 {
		panic(fmt.Sprintf("shared: SetID with non-positive id %d", id))
	}
	e.ID = id
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch refreshes the updated_at timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
