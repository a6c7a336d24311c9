package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/shared"
)

// ActivityLogHandler writes every entity lifecycle event to the structured
// log. It subscribes as a wildcard handler, so one instance covers all
// entity types.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates the activity log handler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger}
}

// Handle records one lifecycle event
func (h *ActivityLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("activity",
		zap.String("event_type", event.EventType()),
		zap.String("entity_type", event.EntityType()),
		zap.Int64("entity_id", event.EntityID()),
		zap.String("event_id", event.EventID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EntityTypes returns nil: the handler subscribes to every entity type
func (h *ActivityLogHandler) EntityTypes() []string {
	return nil
}

var _ shared.EventHandler = (*ActivityLogHandler)(nil)
