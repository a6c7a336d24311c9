package event

import (
	"sync"

	"github.com/crm/backend/internal/domain/shared"
)

// HandlerRegistry manages event handler registrations. Handlers subscribe
// per entity type and are delivered events for every lifecycle stage of
// that type; a handler registered without entity types receives everything.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler // entityType -> handlers in subscription order
	wildcard []shared.EventHandler            // handlers for all entity types
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string][]shared.EventHandler),
		wildcard: make([]shared.EventHandler, 0),
	}
}

// Register adds a handler for specific entity types.
// If no entity types are provided, the handler receives all events.
func (r *HandlerRegistry) Register(handler shared.EventHandler, entityTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(entityTypes) == 0 {
		r.wildcard = append(r.wildcard, handler)
		return
	}

	for _, entityType := range entityTypes {
		r.handlers[entityType] = append(r.handlers[entityType], handler)
	}
}

// Unregister removes a handler from all entity types
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = removeHandler(r.wildcard, handler)

	for entityType, handlers := range r.handlers {
		r.handlers[entityType] = removeHandler(handlers, handler)
		if len(r.handlers[entityType]) == 0 {
			delete(r.handlers, entityType)
		}
	}
}

// HandlersFor returns the handlers subscribed to an entity type, in
// subscription order, followed by the wildcard handlers.
func (r *HandlerRegistry) HandlersFor(entityType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeHandlers := r.handlers[entityType]
	result := make([]shared.EventHandler, 0, len(typeHandlers)+len(r.wildcard))
	result = append(result, typeHandlers...)
	result = append(result, r.wildcard...)

	return result
}

// removeHandler removes a handler from a slice of handlers
func removeHandler(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}
