package support

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/support"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

// eventRecorder captures every event delivered through the bus, in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *eventRecorder) Handle(_ context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) EntityTypes() []string { return nil }

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

func (r *eventRecorder) last() shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// seedPartners persists one customer and one supplier for tasks and tickets
// to link against.
func seedPartners(t *testing.T, db *gorm.DB) (customerID, supplierID int64) {
	t.Helper()
	ctx := context.Background()

	customer := partner.NewCustomer("Zhang San")
	require.NoError(t, persistence.NewCustomerRepository(db).Create(ctx, customer))
	supplier := partner.NewSupplier("Board Materials Co")
	require.NoError(t, persistence.NewSupplierRepository(db).Create(ctx, supplier))

	customerID, _ = customer.GetID()
	supplierID, _ = supplier.GetID()
	return customerID, supplierID
}

func newTestTaskService(t *testing.T) (*TaskService, int64, int64, *eventRecorder) {
	t.Helper()

	db := openTestDB(t)
	customerID, supplierID := seedPartners(t, db)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	recorder := &eventRecorder{}
	bus.Subscribe(recorder, support.EntityNameTask)
	svc := NewTaskService(persistence.NewTaskRepository(db),
		persistence.NewCustomerRepository(db), persistence.NewSupplierRepository(db),
		bus, zap.NewNop())
	return svc, customerID, supplierID, recorder
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a pending medium-priority task and publishes created", func(t *testing.T) {
		svc, _, _, recorder := newTestTaskService(t)

		task := support.NewTask("Follow up on the plywood quote")
		created, err := svc.Create(ctx, task)
		require.NoError(t, err)

		id, ok := created.GetID()
		require.True(t, ok)
		assert.Positive(t, id)
		assert.Equal(t, support.TaskStatusPending, created.Status)
		assert.Equal(t, support.PriorityMedium, created.Priority)

		assert.Equal(t, []string{"task.created"}, recorder.types())
		createdEvent, ok := recorder.last().(*shared.EntityCreated[*support.Task])
		require.True(t, ok)
		assert.Equal(t, "Follow up on the plywood quote", createdEvent.Entity.Title)
	})

	t.Run("keeps optional partner links and the due date", func(t *testing.T) {
		svc, customerID, supplierID, _ := newTestTaskService(t)

		due := time.Now().AddDate(0, 0, 7)
		task := support.NewTask("Arrange delivery")
		task.CustomerID = customerID
		task.SupplierID = supplierID
		task.DueDate = &due

		created, err := svc.Create(ctx, task)
		require.NoError(t, err)
		id, _ := created.GetID()

		fetched, found, err := svc.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, customerID, fetched.CustomerID)
		assert.Equal(t, supplierID, fetched.SupplierID)
		require.NotNil(t, fetched.DueDate)
		assert.Equal(t, due.Unix(), fetched.DueDate.Unix())
	})

	t.Run("a task needs no partner links at all", func(t *testing.T) {
		svc, _, _, _ := newTestTaskService(t)

		created, err := svc.Create(ctx, support.NewTask("Tidy the sample room"))
		require.NoError(t, err)
		id, _ := created.GetID()

		fetched, _, err := svc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, fetched.CustomerID)
		assert.Zero(t, fetched.SupplierID)
		assert.Nil(t, fetched.DueDate)
	})

	t.Run("rejects a dangling customer link", func(t *testing.T) {
		svc, customerID, _, _ := newTestTaskService(t)

		task := support.NewTask("Call about the overdue invoice")
		task.CustomerID = customerID + 999

		_, err := svc.Create(ctx, task)
		var ruleErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "customer_exists", ruleErr.Rule)
	})

	t.Run("rejects a dangling supplier link", func(t *testing.T) {
		svc, _, supplierID, _ := newTestTaskService(t)

		task := support.NewTask("Chase the veneer shipment")
		task.SupplierID = supplierID + 999

		_, err := svc.Create(ctx, task)
		var ruleErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "supplier_exists", ruleErr.Rule)
	})

	t.Run("reports every schema violation at once", func(t *testing.T) {
		svc, _, _, _ := newTestTaskService(t)

		task := support.NewTask("")
		task.Description = strings.Repeat("x", 2001)

		_, err := svc.Create(ctx, task)
		var vErr *shared.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Len(t, vErr.Fields, 2)
		assert.True(t, vErr.HasField("title"))
		assert.True(t, vErr.HasField("description"))
	})
}

func TestTaskService_Flow(t *testing.T) {
	ctx := context.Background()

	newPending := func(t *testing.T, svc *TaskService, title string) int64 {
		t.Helper()
		created, err := svc.Create(ctx, support.NewTask(title))
		require.NoError(t, err)
		id, _ := created.GetID()
		return id
	}

	t.Run("start then complete", func(t *testing.T) {
		svc, _, _, recorder := newTestTaskService(t)
		id := newPending(t, svc, "Prepare the sample pack")

		started, err := svc.Start(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, support.TaskStatusInProgress, started.Status)

		completed, err := svc.Complete(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, support.TaskStatusCompleted, completed.Status)

		fetched, _, err := svc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, support.TaskStatusCompleted, fetched.Status)

		assert.Equal(t, []string{"task.created", "task.updated", "task.updated"}, recorder.types())
	})

	t.Run("cannot complete a task that has not started", func(t *testing.T) {
		svc, _, _, _ := newTestTaskService(t)
		id := newPending(t, svc, "Book the container")

		_, err := svc.Complete(ctx, id)
		var ruleErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "task_status_transition", ruleErr.Rule)

		fetched, _, err := svc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, support.TaskStatusPending, fetched.Status)
	})

	t.Run("cannot start twice", func(t *testing.T) {
		svc, _, _, _ := newTestTaskService(t)
		id := newPending(t, svc, "Confirm the cutting list")

		_, err := svc.Start(ctx, id)
		require.NoError(t, err)
		_, err = svc.Start(ctx, id)

		var ruleErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "task_status_transition", ruleErr.Rule)
	})

	t.Run("open tasks can be cancelled, finished ones cannot", func(t *testing.T) {
		svc, _, _, _ := newTestTaskService(t)

		openID := newPending(t, svc, "Collect the credit report")
		cancelled, err := svc.Cancel(ctx, openID)
		require.NoError(t, err)
		assert.Equal(t, support.TaskStatusCancelled, cancelled.Status)

		_, err = svc.Cancel(ctx, openID)
		var ruleErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "task_status_transition", ruleErr.Rule)

		doneID := newPending(t, svc, "File the customs papers")
		_, err = svc.Start(ctx, doneID)
		require.NoError(t, err)
		_, err = svc.Complete(ctx, doneID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, doneID)
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "task_status_transition", ruleErr.Rule)
	})

	t.Run("missing task comes back as not found", func(t *testing.T) {
		svc, _, _, _ := newTestTaskService(t)

		_, err := svc.Start(ctx, 4040)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = svc.Complete(ctx, 4040)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = svc.Cancel(ctx, 4040)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestTaskService_Search(t *testing.T) {
	ctx := context.Background()
	svc, customerID, _, _ := newTestTaskService(t)

	titles := []string{"Follow up on samples", "Follow up on payment", "Stocktake"}
	var firstID int64
	for i, title := range titles {
		task := support.NewTask(title)
		if i == 0 {
			task.CustomerID = customerID
		}
		created, err := svc.Create(ctx, task)
		require.NoError(t, err)
		if i == 0 {
			firstID, _ = created.GetID()
		}
	}
	_, err := svc.Start(ctx, firstID)
	require.NoError(t, err)

	byKeyword, err := svc.Search(ctx, shared.NewSearchQuery().WithKeyword("follow up"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), byKeyword.TotalCount)

	inProgress, err := svc.Search(ctx, shared.NewSearchQuery().
		WithFilter("status", support.TaskStatusInProgress.String()))
	require.NoError(t, err)
	require.Len(t, inProgress.Items, 1)
	assert.Equal(t, "Follow up on samples", inProgress.Items[0].Title)

	linked, err := svc.Search(ctx, shared.NewSearchQuery().WithFilter("customer_id", customerID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), linked.TotalCount)
}
