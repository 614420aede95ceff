package org

import (
	"time"

	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProducts pages through the organization's catalog.
func (h *Handler) GetProducts(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: orgID,
		Search:         c.Query("search"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetProduct fetches one product.
func (h *Handler) GetProduct(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	product, err := h.ProductService.Get(orgID, productID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

type createProductRequest struct {
	Slug        string                 `json:"slug" binding:"required"`
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Images      []string               `json:"images"`
	Attributes  map[string]interface{} `json:"attributes"`
}

// CreateProduct adds a product, subject to the plan quota.
func (h *Handler) CreateProduct(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.Create(orgID, service.CreateProductInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Attributes:  req.Attributes,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

type updateProductRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Images      *[]string               `json:"images"`
	Attributes  *map[string]interface{} `json:"attributes"`
	IsActive    *bool                   `json:"is_active"`
}

// UpdateProduct edits a product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.Update(orgID, productID, service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Attributes:  req.Attributes,
		IsActive:    req.IsActive,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct retires a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(orgID, productID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetJourney lists a product's provenance steps.
func (h *Handler) GetJourney(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	if _, err := h.ProductService.Get(orgID, productID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	steps, err := h.ProductService.Journey(productID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, steps)
}

type appendJourneyRequest struct {
	Title      string     `json:"title" binding:"required"`
	Details    string     `json:"details"`
	Location   string     `json:"location"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// AppendJourneyStep records a provenance event.
func (h *Handler) AppendJourneyStep(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	productID, ok := shared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	var req appendJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input := service.AppendJourneyInput{
		Title:    req.Title,
		Details:  req.Details,
		Location: req.Location,
	}
	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}
	step, err := h.ProductService.AppendJourneyStep(orgID, productID, input)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, step)
}
