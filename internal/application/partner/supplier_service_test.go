package partner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/persistence"
)

func newTestSupplierService(t *testing.T) (*SupplierService, *eventRecorder) {
	t.Helper()

	repo := persistence.NewSupplierRepository(openTestDB(t))
	bus := event.NewInMemoryEventBus(zap.NewNop())
	recorder := &eventRecorder{}
	bus.Subscribe(recorder, partner.EntityNameSupplier)
	return NewSupplierService(repo, bus, zap.NewNop()), recorder
}

func TestSupplierService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("new suppliers start at the lowest tier", func(t *testing.T) {
		svc, recorder := newTestSupplierService(t)

		supplier := partner.NewSupplier("Board Materials Co")
		supplier.Phone = "075526123456"

		created, err := svc.Create(ctx, supplier)
		require.NoError(t, err)

		_, ok := created.GetID()
		require.True(t, ok)
		assert.Equal(t, shared.PotentialLevel(), created.Level)
		assert.Equal(t, []string{"supplier.created"}, recorder.types())
	})

	t.Run("an explicit tier wins over the default", func(t *testing.T) {
		svc, _ := newTestSupplierService(t)

		supplier := partner.NewSupplier("Board Materials Co")
		supplier.SetLevel(shared.ImportantLevel())

		created, err := svc.Create(ctx, supplier)
		require.NoError(t, err)
		assert.Equal(t, shared.ImportantLevel(), created.Level)
	})

	t.Run("duplicate phone is rejected", func(t *testing.T) {
		svc, _ := newTestSupplierService(t)

		first := partner.NewSupplier("Board Materials Co")
		first.Phone = "075526123456"
		_, err := svc.Create(ctx, first)
		require.NoError(t, err)

		second := partner.NewSupplier("Plywood Trading Ltd")
		second.Phone = "075526123456"
		_, err = svc.Create(ctx, second)

		var ruleErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "unique_phone", ruleErr.Rule)
	})
}

func TestSupplierService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, recorder := newTestSupplierService(t)

	supplier := partner.NewSupplier("Board Materials Co")
	supplier.ContactPerson = "Chen Wei"
	supplier.Email = "sales@board-materials.example.com"
	created, err := svc.Create(ctx, supplier)
	require.NoError(t, err)
	id, _ := created.GetID()

	// Suppliers climb the same one-way ladder as customers.
	upgraded, err := svc.ChangeLevel(ctx, id, shared.NormalLevel())
	require.NoError(t, err)
	assert.Equal(t, shared.NormalLevel(), upgraded.Level)
	_, err = svc.ChangeLevel(ctx, id, shared.PotentialLevel())
	var ruleErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "level_transition", ruleErr.Rule)

	upgraded.ContactPerson = "Chen Hao"
	updated, err := svc.Update(ctx, upgraded)
	require.NoError(t, err)
	assert.Equal(t, "Chen Hao", updated.ContactPerson)
	assert.Equal(t, shared.NormalLevel(), updated.Level)

	require.NoError(t, svc.Delete(ctx, id))
	_, ok, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{
		"supplier.created",
		"supplier.updated",
		"supplier.updated",
		"supplier.deleted",
	}, recorder.types())
}

func TestSupplierService_Statistics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestSupplierService(t)

	for i, level := range []shared.Level{shared.PotentialLevel(), shared.PotentialLevel(), shared.VipLevel()} {
		supplier := partner.NewSupplier([]string{"First Co", "Second Co", "Third Co"}[i])
		supplier.SetLevel(level)
		_, err := svc.Create(ctx, supplier)
		require.NoError(t, err)
	}

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByLevel[shared.PotentialLevel().Code()])
	assert.Equal(t, int64(1), stats.ByLevel[shared.VipLevel().Code()])
	assert.Equal(t, int64(0), stats.ByLevel[shared.NormalLevel().Code()])
}
