package handler

import (
	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SupplierHandler handles supplier-related API endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
	}
}

// CreateSupplierRequest represents a request to create a new supplier
// @Description Request body for creating a new supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200" example:"Northern Steel Supply"`
	ContactPerson string `json:"contact_person" binding:"max=100" example:"Wang Lei"`
	Phone         string `json:"phone" binding:"max=50" example:"010-88886666"`
	Email         string `json:"email" binding:"omitempty,email,max=200" example:"orders@northsteel.cn"`
	Address       string `json:"address" binding:"max=500" example:"5 Industrial Park Road, Tangshan"`
	Level         string `json:"level" binding:"omitempty,oneof=potential normal important vip" example:"potential"`
}

// UpdateSupplierRequest represents a request to update a supplier.
// Only the fields present in the body are changed; tier changes go
// through the level endpoint.
type UpdateSupplierRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200" example:"Northern Steel Supply"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=100" example:"Zhao Jun"`
	Phone         *string `json:"phone" binding:"omitempty,max=50" example:"010-66668888"`
	Email         *string `json:"email" binding:"omitempty,email,max=200" example:"sales@northsteel.cn"`
	Address       *string `json:"address" binding:"omitempty,max=500" example:"7 Industrial Park Road, Tangshan"`
}

// ListSuppliersRequest represents supplier list query parameters
type ListSuppliersRequest struct {
	dto.ListRequest
	Level string `form:"level" binding:"omitempty,oneof=potential normal important vip"`
}

// Create godoc
// @ID           createSupplier
// @Summary      Create a new supplier
// @Description  Create a new supplier, starting at the lowest tier when no level is given
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body CreateSupplierRequest true "Supplier creation request"
// @Success      201 {object} APIResponse[SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplier := partner.NewSupplier(req.Name)
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address

	if req.Level != "" {
		level, err := shared.LevelFromCode(req.Level)
		if err != nil {
			h.BadRequest(c, "Unknown supplier level")
			return
		}
		supplier.SetLevel(level)
	}

	created, err := h.supplierService.Create(c.Request.Context(), supplier)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getSupplierById
// @Summary      Get supplier by ID
// @Description  Retrieve a supplier by its ID
// @Tags         suppliers
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Success      200 {object} APIResponse[SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	supplierID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	supplier, found, err := h.supplierService.GetByID(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Supplier not found")
		return
	}

	h.Success(c, supplier)
}

// List godoc
// @ID           listSuppliers
// @Summary      List suppliers
// @Description  Retrieve a paginated list of suppliers with keyword search and level filtering
// @Tags         suppliers
// @Produce      json
// @Param        search query string false "Search term (name, contact person, phone, email)"
// @Param        level query string false "Supplier level" Enums(potential, normal, important, vip)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	req := ListSuppliersRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := searchQueryFromList(req.ListRequest)
	if req.Level != "" {
		query = query.WithFilter("level", req.Level)
	}

	result, err := h.supplierService.Search(c.Request.Context(), query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.TotalCount, req.Page, req.PageSize)
}

// Update godoc
// @ID           updateSupplier
// @Summary      Update a supplier
// @Description  Update an existing supplier's contact details
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Param        request body UpdateSupplierRequest true "Supplier update request"
// @Success      200 {object} APIResponse[SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	supplierID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	var req UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplier, found, err := h.supplierService.GetByID(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Supplier not found")
		return
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}

	updated, err := h.supplierService.Update(c.Request.Context(), supplier)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// Delete godoc
// @ID           deleteSupplier
// @Summary      Delete a supplier
// @Description  Delete a supplier by ID
// @Tags         suppliers
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	supplierID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), supplierID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ChangeLevel godoc
// @ID           changeSupplierLevel
// @Summary      Change supplier level
// @Description  Upgrade a supplier to a strictly higher tier. Downgrades and lateral moves are rejected, and the top tier is final.
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Param        request body ChangeLevelRequest true "Target level"
// @Success      200 {object} APIResponse[SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /suppliers/{id}/level [put]
func (h *SupplierHandler) ChangeLevel(c *gin.Context) {
	supplierID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	var req ChangeLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := shared.LevelFromCode(req.Level)
	if err != nil {
		h.BadRequest(c, "Unknown supplier level")
		return
	}

	supplier, err := h.supplierService.ChangeLevel(c.Request.Context(), supplierID, level)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, supplier)
}

// Statistics godoc
// @ID           supplierStatistics
// @Summary      Get supplier statistics
// @Description  Get the supplier total and the count per tier
// @Tags         suppliers
// @Produce      json
// @Success      200 {object} APIResponse[SupplierStatisticsResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /suppliers/statistics [get]
func (h *SupplierHandler) Statistics(c *gin.Context) {
	stats, err := h.supplierService.Statistics(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
