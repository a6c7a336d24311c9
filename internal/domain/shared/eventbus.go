package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event. Handlers run synchronously on the
	// publisher's goroutine and must not assume a dedicated thread.
	Handle(ctx context.Context, event DomainEvent) error
	// EntityTypes returns the entity-type names this handler is
	// interested in. An empty slice means the handler receives every
	// entity type's events.
	EntityTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish delivers one or more domain events to subscribed handlers
	// in subscription order. Handler failures are collected and returned
	// under the EVENT_HANDLING family; delivery to remaining handlers
	// continues regardless.
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	// Subscribe registers a handler for specific entity types. If no
	// entity types are provided, the handler's own EntityTypes() applies.
	Subscribe(handler EventHandler, entityTypes ...string)
	// Unsubscribe removes a handler from the subscription list
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities. It is an
// explicit object owned by whoever constructs the services, never ambient
// global state.
type EventBus interface {
	EventPublisher
	EventSubscriber
	// Start starts the event bus
	Start(ctx context.Context) error
	// Stop gracefully stops the event bus
	Stop(ctx context.Context) error
}
