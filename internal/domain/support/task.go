package support

import (
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
)

// EntityNameTask is the entity name follow-up tasks register under
const EntityNameTask = "task"

// TaskStatus represents the status of a follow-up task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid checks if the status is a known TaskStatus
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TaskStatus
func (s TaskStatus) String() string {
	return string(s)
}

// Task represents a follow-up task, optionally tied to a customer or supplier
type Task struct {
	shared.BaseEntity
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	CustomerID  int64      `json:"customer_id"` // 0 when not tied to a customer
	SupplierID  int64      `json:"supplier_id"` // 0 when not tied to a supplier
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// NewTask creates an unpersisted pending task with medium priority
func NewTask(title string) *Task {
	return &Task{
		BaseEntity: shared.NewBaseEntity(),
		Title:      title,
		Status:     TaskStatusPending,
		Priority:   PriorityMedium,
	}
}

// EntityName returns the entity name for tasks
func (t *Task) EntityName() string {
	return EntityNameTask
}

// DisplayLabel returns the task title for display and error messages
func (t *Task) DisplayLabel() string {
	return t.Title
}

// Validate runs the task's schema checks, reporting every violated field
func (t *Task) Validate() *shared.ValidationResult {
	result := shared.NewValidationResult()

	if strings.TrimSpace(t.Title) == "" {
		result.AddError("title", "task title cannot be empty")
	} else if len(t.Title) > 200 {
		result.AddError("title", "task title cannot exceed 200 characters")
	}
	if len(t.Description) > 2000 {
		result.AddError("description", "task description cannot exceed 2000 characters")
	}
	if !t.Status.IsValid() {
		result.AddError("status", fmt.Sprintf("unknown task status %q", t.Status))
	}
	if !t.Priority.IsValid() {
		result.AddError("priority", fmt.Sprintf("unknown priority %q", t.Priority))
	}
	if t.CustomerID < 0 {
		result.AddError("customer_id", "customer reference cannot be negative")
	}
	if t.SupplierID < 0 {
		result.AddError("supplier_id", "supplier reference cannot be negative")
	}

	return result
}

// Start moves a pending task into progress
func (t *Task) Start() error {
	if t.Status != TaskStatusPending {
		return shared.NewBusinessRuleError("task_status_transition",
			fmt.Sprintf("task %q cannot start from status %s", t.Title, t.Status))
	}
	t.Status = TaskStatusInProgress
	t.Touch()
	return nil
}

// Complete finishes a task that is in progress
func (t *Task) Complete() error {
	if t.Status != TaskStatusInProgress {
		return shared.NewBusinessRuleError("task_status_transition",
			fmt.Sprintf("task %q cannot complete from status %s", t.Title, t.Status))
	}
	t.Status = TaskStatusCompleted
	t.Touch()
	return nil
}

// Cancel abandons a task that has not finished yet
func (t *Task) Cancel() error {
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled {
		return shared.NewBusinessRuleError("task_status_transition",
			fmt.Sprintf("task %q cannot be cancelled from status %s", t.Title, t.Status))
	}
	t.Status = TaskStatusCancelled
	t.Touch()
	return nil
}

// IsOverdue reports whether the task has a due date in the past and is
// still open
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled {
		return false
	}
	return now.After(*t.DueDate)
}
