package handler

import (
	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// CreateCustomerRequest represents a request to create a new customer
// @Description Request body for creating a new customer
type CreateCustomerRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200" example:"Acme Building Materials"`
	ContactPerson string `json:"contact_person" binding:"max=100" example:"Zhang Wei"`
	Phone         string `json:"phone" binding:"max=50" example:"13800138000"`
	Email         string `json:"email" binding:"omitempty,email,max=200" example:"sales@acme.cn"`
	Address       string `json:"address" binding:"max=500" example:"88 Jianguo Road, Beijing"`
	Level         string `json:"level" binding:"omitempty,oneof=potential normal important vip" example:"normal"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Only the fields present in the body are changed. The tier is not
// updatable here; level changes go through the level endpoint so the
// upgrade rule applies.
type UpdateCustomerRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200" example:"Acme Building Materials"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=100" example:"Li Na"`
	Phone         *string `json:"phone" binding:"omitempty,max=50" example:"13900139000"`
	Email         *string `json:"email" binding:"omitempty,email,max=200" example:"info@acme.cn"`
	Address       *string `json:"address" binding:"omitempty,max=500" example:"100 Chaoyang Road, Beijing"`
}

// ChangeLevelRequest represents a request to upgrade a partner's tier
// @Description Request body for changing a customer or supplier level
type ChangeLevelRequest struct {
	Level string `json:"level" binding:"required,oneof=potential normal important vip" example:"important"`
}

// ListCustomersRequest represents customer list query parameters
type ListCustomersRequest struct {
	dto.ListRequest
	Level string `form:"level" binding:"omitempty,oneof=potential normal important vip"`
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a new customer
// @Description  Create a new customer, defaulting to the normal tier when no level is given
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body CreateCustomerRequest true "Customer creation request"
// @Success      201 {object} APIResponse[CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer := partner.NewCustomer(req.Name)
	customer.ContactPerson = req.ContactPerson
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address

	if req.Level != "" {
		level, err := shared.LevelFromCode(req.Level)
		if err != nil {
			h.BadRequest(c, "Unknown customer level")
			return
		}
		customer.SetLevel(level)
	}

	created, err := h.customerService.Create(c.Request.Context(), customer)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getCustomerById
// @Summary      Get customer by ID
// @Description  Retrieve a customer by its ID
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} APIResponse[CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	customer, found, err := h.customerService.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Customer not found")
		return
	}

	h.Success(c, customer)
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  Retrieve a paginated list of customers with keyword search and level filtering
// @Tags         customers
// @Produce      json
// @Param        search query string false "Search term (name, contact person, phone, email)"
// @Param        level query string false "Customer level" Enums(potential, normal, important, vip)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	req := ListCustomersRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := searchQueryFromList(req.ListRequest)
	if req.Level != "" {
		query = query.WithFilter("level", req.Level)
	}

	result, err := h.customerService.Search(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.TotalCount, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Description  Update an existing customer's contact details
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path int true "Customer ID"
// @Param        request body UpdateCustomerRequest true "Customer update request"
// @Success      200 {object} APIResponse[CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer, found, err := h.customerService.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Customer not found")
		return
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.ContactPerson != nil {
		customer.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}

	updated, err := h.customerService.Update(c.Request.Context(), customer)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Delete a customer by ID
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), customerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ChangeLevel godoc
// @ID           changeCustomerLevel
// @Summary      Change customer level
// @Description  Upgrade a customer to a strictly higher tier. Downgrades and lateral moves are rejected, and the top tier is final.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path int true "Customer ID"
// @Param        request body ChangeLevelRequest true "Target level"
// @Success      200 {object} APIResponse[CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /customers/{id}/level [put]
func (h *CustomerHandler) ChangeLevel(c *gin.Context) {
	customerID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req ChangeLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := shared.LevelFromCode(req.Level)
	if err != nil {
		h.BadRequest(c, "Unknown customer level")
		return
	}

	customer, err := h.customerService.ChangeLevel(c.Request.Context(), customerID, level)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, customer)
}

// Statistics godoc
// @ID           customerStatistics
// @Summary      Get customer statistics
// @Description  Get the customer total and the count per tier
// @Tags         customers
// @Produce      json
// @Success      200 {object} APIResponse[CustomerStatisticsResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /customers/statistics [get]
func (h *CustomerHandler) Statistics(c *gin.Context) {
	stats, err := h.customerService.Statistics(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
