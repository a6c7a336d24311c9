package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a lifecycle change that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	// EntityID returns the identifier of the entity the event concerns
	EntityID() int64
	// EntityType returns the entity-type name the event concerns
	EntityType() string
}

// Lifecycle event type suffixes. The full event type is the entity-type
// name plus the suffix, e.g. "customer.created".
const (
	EventSuffixCreated = ".created"
	EventSuffixUpdated = ".updated"
	EventSuffixDeleted = ".deleted"
)

// EventTypeCreated returns the created-event type for an entity type
func EventTypeCreated(entityName string) string { return entityName + EventSuffixCreated }

// EventTypeUpdated returns the updated-event type for an entity type
func EventTypeUpdated(entityName string) string { return entityName + EventSuffixUpdated }

// EventTypeDeleted returns the deleted-event type for an entity type
func EventTypeDeleted(entityName string) string { return entityName + EventSuffixDeleted }

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	EntID      int64     `json:"entity_id"`
	EntityName string    `json:"entity_type"`
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, entityName string, entityID int64) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Timestamp:  time.Now(),
		EntID:      entityID,
		EntityName: entityName,
	}
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// EntityID returns the ID of the entity that produced this event
func (e *BaseDomainEvent) EntityID() int64 {
	return e.EntID
}

// EntityType returns the entity-type name
func (e *BaseDomainEvent) EntityType() string {
	return e.EntityName
}

// EntityCreated signals that an entity was persisted for the first time.
// It carries the full snapshot so handlers never need to re-fetch.
type EntityCreated[T Entity] struct {
	BaseDomainEvent
	Entity T `json:"entity"`
}

// NewEntityCreated creates a created event for a persisted entity
func NewEntityCreated[T Entity](entity T) *EntityCreated[T] {
	id, _ := entity.GetID()
	name := entity.EntityName()
	return &EntityCreated[T]{
		BaseDomainEvent: NewBaseDomainEvent(EventTypeCreated(name), name, id),
		Entity:          entity,
	}
}

// EntityUpdated signals that an entity's mutable fields were replaced.
// Old is the snapshot fetched before the write, New the state written.
type EntityUpdated[T Entity] struct {
	BaseDomainEvent
	Old T `json:"old"`
	New T `json:"new"`
}

// NewEntityUpdated creates an updated event carrying both snapshots
func NewEntityUpdated[T Entity](old, updated T) *EntityUpdated[T] {
	id, _ := updated.GetID()
	name := updated.EntityName()
	return &EntityUpdated[T]{
		BaseDomainEvent: NewBaseDomainEvent(EventTypeUpdated(name), name, id),
		Old:             old,
		New:             updated,
	}
}

// EntityDeleted signals that the row for the given id was removed. The id
// travels in EntityID; deleted rows have no snapshot to carry.
type EntityDeleted struct {
	BaseDomainEvent
}

// NewEntityDeleted creates a deleted event for an entity type and id
func NewEntityDeleted(entityName string, id int64) *EntityDeleted {
	return &EntityDeleted{
		BaseDomainEvent: NewBaseDomainEvent(EventTypeDeleted(entityName), entityName, id),
	}
}
