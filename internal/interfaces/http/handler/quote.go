package handler

import (
	"time"

	tradeapp "github.com/crm/backend/internal/application/trade"
	"github.com/crm/backend/internal/domain/trade"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// QuoteHandler handles quote-related API endpoints
type QuoteHandler struct {
	BaseHandler
	quoteService *tradeapp.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *tradeapp.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// CreateQuoteRequest represents a request to create a new quote
// @Description Request body for creating a new draft quote
type CreateQuoteRequest struct {
	QuoteNumber string    `json:"quote_number" binding:"required,min=1,max=50" example:"Q-20260801-0001"`
	CustomerID  int64     `json:"customer_id" binding:"required,min=1" example:"42"`
	TotalAmount float64   `json:"total_amount" binding:"min=0" example:"12500.50"`
	ValidUntil  time.Time `json:"valid_until" binding:"required" example:"2026-09-30T00:00:00Z"`
}

// UpdateQuoteRequest represents a request to update a quote. The quote
// number is fixed at creation; status changes go through the transition
// endpoint.
type UpdateQuoteRequest struct {
	CustomerID  *int64     `json:"customer_id" binding:"omitempty,min=1" example:"42"`
	TotalAmount *float64   `json:"total_amount" binding:"omitempty,min=0" example:"13000.00"`
	ValidUntil  *time.Time `json:"valid_until" example:"2026-10-31T00:00:00Z"`
}

// TransitionQuoteRequest represents a request to move a quote through its
// status graph
// @Description Request body for a quote status transition
type TransitionQuoteRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT SENT ACCEPTED REJECTED EXPIRED" example:"SENT"`
}

// ListQuotesRequest represents quote list query parameters
type ListQuotesRequest struct {
	dto.ListRequest
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT SENT ACCEPTED REJECTED EXPIRED"`
	CustomerID int64  `form:"customer_id" binding:"omitempty,min=1"`
}

// Create godoc
// @ID           createQuote
// @Summary      Create a new quote
// @Description  Create a new quote in draft status. The quote number is normalized to upper case and must be unique.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request body CreateQuoteRequest true "Quote creation request"
// @Success      201 {object} APIResponse[QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote := trade.NewQuote(req.QuoteNumber, req.CustomerID, toDecimal(req.TotalAmount), req.ValidUntil)

	created, err := h.quoteService.Create(c.Request.Context(), quote)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getQuoteById
// @Summary      Get quote by ID
// @Description  Retrieve a quote by its ID
// @Tags         quotes
// @Produce      json
// @Param        id path int true "Quote ID"
// @Success      200 {object} APIResponse[QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) GetByID(c *gin.Context) {
	quoteID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	quote, found, err := h.quoteService.GetByID(c.Request.Context(), quoteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Quote not found")
		return
	}

	h.Success(c, quote)
}

// List godoc
// @ID           listQuotes
// @Summary      List quotes
// @Description  Retrieve a paginated list of quotes with keyword search, status and customer filtering
// @Tags         quotes
// @Produce      json
// @Param        search query string false "Search term (quote number)"
// @Param        status query string false "Quote status" Enums(DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED)
// @Param        customer_id query int false "Customer ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	req := ListQuotesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := searchQueryFromList(req.ListRequest)
	if req.Status != "" {
		query = query.WithFilter("status", req.Status)
	}
	if req.CustomerID > 0 {
		query = query.WithFilter("customer_id", req.CustomerID)
	}

	result, err := h.quoteService.Search(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.TotalCount, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateQuote
// @Summary      Update a quote
// @Description  Update a quote's customer, amount, or validity date
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path int true "Quote ID"
// @Param        request body UpdateQuoteRequest true "Quote update request"
// @Success      200 {object} APIResponse[QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	quoteID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	var req UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, found, err := h.quoteService.GetByID(c.Request.Context(), quoteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Quote not found")
		return
	}

	if req.CustomerID != nil {
		quote.CustomerID = *req.CustomerID
	}
	if req.TotalAmount != nil {
		quote.TotalAmount = toDecimal(*req.TotalAmount)
	}
	if req.ValidUntil != nil {
		quote.ValidUntil = *req.ValidUntil
	}

	updated, err := h.quoteService.Update(c.Request.Context(), quote)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// Delete godoc
// @ID           deleteQuote
// @Summary      Delete a quote
// @Description  Delete a quote by ID
// @Tags         quotes
// @Produce      json
// @Param        id path int true "Quote ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	quoteID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	if err := h.quoteService.Delete(c.Request.Context(), quoteID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Transition godoc
// @ID           transitionQuote
// @Summary      Transition a quote
// @Description  Move a quote to the target status. Draft quotes can only be sent; sent quotes can be accepted, rejected, or expired; terminal statuses cannot move.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path int true "Quote ID"
// @Param        request body TransitionQuoteRequest true "Target status"
// @Success      200 {object} APIResponse[QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /quotes/{id}/transition [post]
func (h *QuoteHandler) Transition(c *gin.Context) {
	quoteID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid quote ID format")
		return
	}

	var req TransitionQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.quoteService.Transition(c.Request.Context(), quoteID, trade.QuoteStatus(req.Status))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}
