package admin

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetOrgs pages through organizations, unverified included.
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

// GetOrg fetches one organization.
func (h *Handler) GetOrg(c *gin.Context) {
	orgID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	org, err := h.OrgService.GetByID(orgID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, org)
}

type setVerifiedRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// SetOrgVerified grants or withdraws the verified badge.
func (h *Handler) SetOrgVerified(c *gin.Context) {
	orgID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req setVerifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.OrgService.SetVerified(orgID, *req.Verified); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_org_verified_changed",
		"org_id", orgID,
		"verified", *req.Verified,
	)
	response.Success(c, nil)
}

// DeleteOrg removes an organization from the platform.
func (h *Handler) DeleteOrg(c *gin.Context) {
	orgID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.OrgService.Delete(orgID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_org_deleted", "org_id", orgID)
	response.Success(c, nil)
}

type assignSubscriptionRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
	Months int  `json:"months" binding:"required"`
}

// AssignSubscription puts an organization on a plan.
func (h *Handler) AssignSubscription(c *gin.Context) {
	orgID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req assignSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	sub, err := h.SubscriptionService.Assign(orgID, req.PlanID, req.Months)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, sub)
}

// RecomputeTrust recalculates the organization's trust score on demand.
func (h *Handler) RecomputeTrust(c *gin.Context) {
	orgID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	score, level, err := h.TrustService.Recompute(orgID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"score": score,
		"level": level,
	})
}
