package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityLifecycleEvents(t *testing.T) {
	contact := &testContact{BaseEntity: NewBaseEntity(), Name: "Zhang San", Phone: "13812345678"}
	contact.SetID(11)

	t.Run("created event snapshots the entity", func(t *testing.T) {
		event := NewEntityCreated(contact)

		assert.Equal(t, "test_contact.created", event.EventType())
		assert.Equal(t, "test_contact", event.EntityType())
		assert.Equal(t, int64(11), event.EntityID())
		assert.NotEqual(t, uuid.Nil, event.EventID())
		assert.False(t, event.OccurredAt().IsZero())
		assert.Same(t, contact, event.Entity)
	})

	t.Run("updated event carries both snapshots", func(t *testing.T) {
		old := &testContact{BaseEntity: NewBaseEntity(), Name: "Zhang San", Phone: "13812345678"}
		old.SetID(11)

		event := NewEntityUpdated(old, contact)

		assert.Equal(t, "test_contact.updated", event.EventType())
		assert.Equal(t, int64(11), event.EntityID())
		assert.Same(t, old, event.Old)
		assert.Same(t, contact, event.New)
	})

	t.Run("deleted event carries only the id", func(t *testing.T) {
		event := NewEntityDeleted("test_contact", 11)

		assert.Equal(t, "test_contact.deleted", event.EventType())
		assert.Equal(t, "test_contact", event.EntityType())
		assert.Equal(t, int64(11), event.EntityID())
	})

	t.Run("each event gets a distinct id", func(t *testing.T) {
		a := NewEntityDeleted("test_contact", 1)
		b := NewEntityDeleted("test_contact", 1)
		require.NotEqual(t, a.EventID(), b.EventID())
	})
}
