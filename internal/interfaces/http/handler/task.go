package handler

import (
	"time"

	supportapp "github.com/crm/backend/internal/application/support"
	"github.com/crm/backend/internal/domain/support"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TaskHandler handles follow-up task API endpoints
type TaskHandler struct {
	BaseHandler
	taskService *supportapp.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *supportapp.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTaskRequest represents a request to create a follow-up task
// @Description Request body for creating a new follow-up task
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200" example:"Call back about the cement order"`
	Description string     `json:"description" binding:"max=2000" example:"Customer asked for a revised delivery window"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high urgent" example:"high"`
	CustomerID  int64      `json:"customer_id" binding:"omitempty,min=1" example:"42"`
	SupplierID  int64      `json:"supplier_id" binding:"omitempty,min=1" example:"17"`
	DueDate     *time.Time `json:"due_date" example:"2026-08-30T09:00:00Z"`
}

// UpdateTaskRequest represents a request to update a follow-up task.
// Status changes go through the start, complete, and cancel endpoints.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200" example:"Call back about the cement order"`
	Description *string    `json:"description" binding:"omitempty,max=2000" example:"Delivery window confirmed for next week"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent" example:"medium"`
	CustomerID  *int64     `json:"customer_id" binding:"omitempty,min=1" example:"42"`
	SupplierID  *int64     `json:"supplier_id" binding:"omitempty,min=1" example:"17"`
	DueDate     *time.Time `json:"due_date" example:"2026-09-05T09:00:00Z"`
}

// ListTasksRequest represents task list query parameters
type ListTasksRequest struct {
	dto.ListRequest
	Status     string `form:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority   string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CustomerID int64  `form:"customer_id" binding:"omitempty,min=1"`
	SupplierID int64  `form:"supplier_id" binding:"omitempty,min=1"`
}

// Create godoc
// @ID           createTask
// @Summary      Create a follow-up task
// @Description  Create a new follow-up task in pending status, optionally tied to a customer or supplier
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        request body CreateTaskRequest true "Task creation request"
// @Success      201 {object} APIResponse[TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	task := support.NewTask(req.Title)
	task.Description = req.Description
	task.CustomerID = req.CustomerID
	task.SupplierID = req.SupplierID
	task.DueDate = req.DueDate
	if req.Priority != "" {
		task.Priority = support.Priority(req.Priority)
	}

	created, err := h.taskService.Create(c.Request.Context(), task)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getTaskById
// @Summary      Get task by ID
// @Description  Retrieve a follow-up task by its ID
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} APIResponse[TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	taskID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid task ID format")
		return
	}

	task, found, err := h.taskService.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Task not found")
		return
	}

	h.Success(c, task)
}

// List godoc
// @ID           listTasks
// @Summary      List tasks
// @Description  Retrieve a paginated list of follow-up tasks with keyword search and filtering
// @Tags         tasks
// @Produce      json
// @Param        search query string false "Search term (title)"
// @Param        status query string false "Task status" Enums(pending, in_progress, completed, cancelled)
// @Param        priority query string false "Task priority" Enums(low, medium, high, urgent)
// @Param        customer_id query int false "Customer ID"
// @Param        supplier_id query int false "Supplier ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	req := ListTasksRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := searchQueryFromList(req.ListRequest)
	if req.Status != "" {
		query = query.WithFilter("status", req.Status)
	}
	if req.Priority != "" {
		query = query.WithFilter("priority", req.Priority)
	}
	if req.CustomerID > 0 {
		query = query.WithFilter("customer_id", req.CustomerID)
	}
	if req.SupplierID > 0 {
		query = query.WithFilter("supplier_id", req.SupplierID)
	}

	result, err := h.taskService.Search(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.TotalCount, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateTask
// @Summary      Update a task
// @Description  Update a follow-up task's details
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path int true "Task ID"
// @Param        request body UpdateTaskRequest true "Task update request"
// @Success      200 {object} APIResponse[TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid task ID format")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	task, found, err := h.taskService.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Task not found")
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = support.Priority(*req.Priority)
	}
	if req.CustomerID != nil {
		task.CustomerID = *req.CustomerID
	}
	if req.SupplierID != nil {
		task.SupplierID = *req.SupplierID
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	updated, err := h.taskService.Update(c.Request.Context(), task)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// Delete godoc
// @ID           deleteTask
// @Summary      Delete a task
// @Description  Delete a follow-up task by ID
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid task ID format")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), taskID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Start godoc
// @ID           startTask
// @Summary      Start a task
// @Description  Move a pending task into progress
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} APIResponse[TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/{id}/start [post]
func (h *TaskHandler) Start(c *gin.Context) {
	taskID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid task ID format")
		return
	}

	task, err := h.taskService.Start(c.Request.Context(), taskID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, task)
}

// Complete godoc
// @ID           completeTask
// @Summary      Complete a task
// @Description  Mark an in-progress task as completed
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} APIResponse[TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	taskID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid task ID format")
		return
	}

	task, err := h.taskService.Complete(c.Request.Context(), taskID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, task)
}

// Cancel godoc
// @ID           cancelTask
// @Summary      Cancel a task
// @Description  Cancel a task that has not finished yet
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} APIResponse[TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tasks/{id}/cancel [post]
func (h *TaskHandler) Cancel(c *gin.Context) {
	taskID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid task ID format")
		return
	}

	task, err := h.taskService.Cancel(c.Request.Context(), taskID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, task)
}
