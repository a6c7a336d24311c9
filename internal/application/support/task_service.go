package support

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crm/backend/internal/application/core"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/support"
)

// TaskService handles follow-up task lifecycle operations. Tasks may link
// to a customer or supplier; both links are optional but must point at
// persisted rows when present.
type TaskService struct {
	*core.EntityService[*support.Task]
}

// NewTaskService creates a new TaskService
func NewTaskService(
	repo shared.Repository[*support.Task],
	customers shared.Repository[*partner.Customer],
	suppliers shared.Repository[*partner.Supplier],
	events shared.EventPublisher,
	logger *zap.Logger,
) *TaskService {
	validator := shared.NewValidator(
		shared.NewReferenceRule[*support.Task](customers, "customer_exists", "customer_id",
			func(t *support.Task) (int64, bool) { return t.CustomerID, t.CustomerID > 0 }),
		shared.NewReferenceRule[*support.Task](suppliers, "supplier_exists", "supplier_id",
			func(t *support.Task) (int64, bool) { return t.SupplierID, t.SupplierID > 0 }),
	)

	return &TaskService{
		EntityService: core.NewEntityService(support.EntityNameTask, repo,
			validator, nil, events, logger),
	}
}

// Start moves a pending task into progress
func (s *TaskService) Start(ctx context.Context, id int64) (*support.Task, error) {
	return s.advance(ctx, id, (*support.Task).Start)
}

// Complete finishes a task that is in progress
func (s *TaskService) Complete(ctx context.Context, id int64) (*support.Task, error) {
	return s.advance(ctx, id, (*support.Task).Complete)
}

// Cancel abandons an open task
func (s *TaskService) Cancel(ctx context.Context, id int64) (*support.Task, error) {
	return s.advance(ctx, id, (*support.Task).Cancel)
}

func (s *TaskService) advance(ctx context.Context, id int64, move func(*support.Task) error) (*support.Task, error) {
	task, found, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("advance task %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("advance task %d: %w", id, shared.ErrNotFound)
	}

	if err := move(task); err != nil {
		return nil, err
	}
	return s.Update(ctx, task)
}
