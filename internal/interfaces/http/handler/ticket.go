package handler

import (
	supportapp "github.com/crm/backend/internal/application/support"
	"github.com/crm/backend/internal/domain/support"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TicketHandler handles service ticket API endpoints
type TicketHandler struct {
	BaseHandler
	ticketService *supportapp.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService *supportapp.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
	}
}

// CreateTicketRequest represents a request to create a service ticket
// @Description Request body for creating a new after-sales service ticket
type CreateTicketRequest struct {
	TicketNumber    string `json:"ticket_number" binding:"required,min=1,max=50" example:"T-20260801-0001"`
	CustomerID      int64  `json:"customer_id" binding:"required,min=1" example:"42"`
	ProblemCategory string `json:"problem_category" binding:"required,min=1,max=100" example:"delivery_damage"`
	Description     string `json:"description" binding:"required,min=1,max=2000" example:"Three pallets of tiles arrived cracked"`
	Priority        string `json:"priority" binding:"omitempty,oneof=low medium high urgent" example:"high"`
}

// UpdateTicketRequest represents a request to update a service ticket.
// The ticket number is fixed at creation; status changes go through the
// transition and resolve endpoints.
type UpdateTicketRequest struct {
	CustomerID      *int64  `json:"customer_id" binding:"omitempty,min=1" example:"42"`
	ProblemCategory *string `json:"problem_category" binding:"omitempty,min=1,max=100" example:"delivery_damage"`
	Description     *string `json:"description" binding:"omitempty,min=1,max=2000" example:"Revised count: four pallets affected"`
	Priority        *string `json:"priority" binding:"omitempty,oneof=low medium high urgent" example:"urgent"`
}

// TransitionTicketRequest represents a request to move a ticket through its
// status graph
// @Description Request body for a ticket status transition
type TransitionTicketRequest struct {
	Status string `json:"status" binding:"required,oneof=new in_progress pending_confirmation closed" example:"in_progress"`
}

// ResolveTicketRequest represents a request to record a ticket's solution
// @Description Request body for resolving a ticket
type ResolveTicketRequest struct {
	Solution string `json:"solution" binding:"required,min=1,max=2000" example:"Replacement pallets shipped, damaged goods collected"`
}

// ListTicketsRequest represents ticket list query parameters
type ListTicketsRequest struct {
	dto.ListRequest
	Status     string `form:"status" binding:"omitempty,oneof=new in_progress pending_confirmation closed"`
	Priority   string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CustomerID int64  `form:"customer_id" binding:"omitempty,min=1"`
}

// Create godoc
// @ID           createTicket
// @Summary      Create a service ticket
// @Description  Create a new after-sales service ticket in new status. The ticket number is normalized to upper case and must be unique.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request body CreateTicketRequest true "Ticket creation request"
// @Success      201 {object} APIResponse[TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket := support.NewTicket(req.TicketNumber, req.CustomerID, req.ProblemCategory, req.Description)
	if req.Priority != "" {
		ticket.Priority = support.Priority(req.Priority)
	}

	created, err := h.ticketService.Create(c.Request.Context(), ticket)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getTicketById
// @Summary      Get ticket by ID
// @Description  Retrieve a service ticket by its ID
// @Tags         tickets
// @Produce      json
// @Param        id path int true "Ticket ID"
// @Success      200 {object} APIResponse[TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tickets/{id} [get]
func (h *TicketHandler) GetByID(c *gin.Context) {
	ticketID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	ticket, found, err := h.ticketService.GetByID(c.Request.Context(), ticketID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Ticket not found")
		return
	}

	h.Success(c, ticket)
}

// List godoc
// @ID           listTickets
// @Summary      List tickets
// @Description  Retrieve a paginated list of service tickets with keyword search and filtering
// @Tags         tickets
// @Produce      json
// @Param        search query string false "Search term (ticket number, problem category)"
// @Param        status query string false "Ticket status" Enums(new, in_progress, pending_confirmation, closed)
// @Param        priority query string false "Ticket priority" Enums(low, medium, high, urgent)
// @Param        customer_id query int false "Customer ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	req := ListTicketsRequest{ListRequest: dto.DefaultListRequest()}
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

	result, err := h.ticketService.Search(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.TotalCount, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateTicket
// @Summary      Update a ticket
// @Description  Update a service ticket's details
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path int true "Ticket ID"
// @Param        request body UpdateTicketRequest true "Ticket update request"
// @Success      200 {object} APIResponse[TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tickets/{id} [put]
func (h *TicketHandler) Update(c *gin.Context) {
	ticketID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, found, err := h.ticketService.GetByID(c.Request.Context(), ticketID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Ticket not found")
		return
	}

	if req.CustomerID != nil {
		ticket.CustomerID = *req.CustomerID
	}
	if req.ProblemCategory != nil {
		ticket.ProblemCategory = *req.ProblemCategory
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Priority != nil {
		ticket.Priority = support.Priority(*req.Priority)
	}

	updated, err := h.ticketService.Update(c.Request.Context(), ticket)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// Delete godoc
// @ID           deleteTicket
// @Summary      Delete a ticket
// @Description  Delete a service ticket by ID
// @Tags         tickets
// @Produce      json
// @Param        id path int true "Ticket ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	ticketID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	if err := h.ticketService.Delete(c.Request.Context(), ticketID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Transition godoc
// @ID           transitionTicket
// @Summary      Transition a ticket
// @Description  Move a ticket to the target status. New tickets can start or close; in-progress tickets can await confirmation or close; awaiting tickets can close or reopen; closed is final.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path int true "Ticket ID"
// @Param        request body TransitionTicketRequest true "Target status"
// @Success      200 {object} APIResponse[TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tickets/{id}/transition [post]
func (h *TicketHandler) Transition(c *gin.Context) {
	ticketID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req TransitionTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Transition(c.Request.Context(), ticketID, support.TicketStatus(req.Status))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// Resolve godoc
// @ID           resolveTicket
// @Summary      Resolve a ticket
// @Description  Record the solution on an in-progress ticket and move it to pending confirmation
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path int true "Ticket ID"
// @Param        request body ResolveTicketRequest true "Solution"
// @Success      200 {object} APIResponse[TicketResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tickets/{id}/resolve [post]
func (h *TicketHandler) Resolve(c *gin.Context) {
	ticketID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req ResolveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Resolve(c.Request.Context(), ticketID, req.Solution)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}
