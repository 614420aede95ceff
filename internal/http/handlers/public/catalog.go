package public

import (
	"strconv"

	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetOrgs pages through organizations for the public directory.
func (h *Handler) GetOrgs(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	orgs, total, err := h.OrgService.List(repository.OrganizationListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       c.Query("search"),
		Country:      c.Query("country"),
		StatusLevel:  c.Query("level"),
		OnlyVerified: c.Query("verified") == "true",
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orgs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetOrgBySlug returns one organization's public profile.
func (h *Handler) GetOrgBySlug(c *gin.Context) {
	profile, err := h.OrgService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, profile)
}

// GetOrgProducts pages through an organization's active products.
func (h *Handler) GetOrgProducts(c *gin.Context) {
	profile, err := h.OrgService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	page, pageSize := shared.QueryPagination(c)
	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: profile.Organization.ID,
		OnlyActive:     true,
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

// GetProductBySlug returns one product with its provenance journal.
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	journey, err := h.ProductService.Journey(product.ID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"product": product,
		"journey": journey,
	})
}

// GetProductReviews pages through a product's approved reviews.
func (h *Handler) GetProductReviews(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	page, pageSize := shared.QueryPagination(c)
	minRating, _ := strconv.Atoi(c.Query("min_rating"))
	reviews, total, err := h.ReviewService.ListPublic(product.ID, minRating, page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, reviews, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetPlans lists active subscription plans for the pricing page.
func (h *Handler) GetPlans(c *gin.Context) {
	plans, err := h.SubscriptionService.ListPlans(true)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, plans)
}

// CreateOrg registers a producer organization owned by the caller.
func (h *Handler) CreateOrg(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	var req struct {
		Slug         string `json:"slug" binding:"required"`
		Name         string `json:"name" binding:"required"`
		Description  string `json:"description"`
		Website      string `json:"website"`
		Country      string `json:"country"`
		ContactEmail string `json:"contact_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	org, err := h.OrgService.Create(userID, service.CreateOrgInput{
		Slug:         req.Slug,
		Name:         req.Name,
		Description:  req.Description,
		Website:      req.Website,
		Country:      req.Country,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, org)
}
