// Package testutil holds helpers shared by the integration suites: a
// recording event handler and decoders for the API response envelope.
package testutil

import (
	"context"
	"sync"

	"github.com/crm/backend/internal/domain/shared"
)

// MockEventHandler records every event it receives. With no entity types it
// subscribes as a wildcard, which is how the flow tests observe a whole
// business engagement. Safe for concurrent use.
type MockEventHandler struct {
	mu          sync.Mutex
	entityTypes []string
	handled     []shared.DomainEvent
	err         error
}

var _ shared.EventHandler = (*MockEventHandler)(nil)

// NewMockEventHandler builds a recording handler for the given entity types,
// or a wildcard handler when called without arguments.
func NewMockEventHandler(entityTypes ...string) *MockEventHandler {
	return &MockEventHandler{entityTypes: entityTypes}
}

func (h *MockEventHandler) EntityTypes() []string {
	return h.entityTypes
}

// Handle records the event and returns the injected error, if one is set.
func (h *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the events received so far, in delivery order.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// HandledCount returns how many events have been received.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes every following Handle call fail with err. Events are still
// recorded, matching a handler that fails after doing partial work.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}
