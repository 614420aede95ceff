package admin

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetPlans lists subscription plans, inactive included.
func (h *Handler) GetPlans(c *gin.Context) {
	plans, err := h.SubscriptionService.ListPlans(false)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, plans)
}

type createPlanRequest struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	MaxProducts  int             `json:"max_products"`
	MaxQRCodes   int             `json:"max_qr_codes"`
}

// CreatePlan adds a subscription plan.
func (h *Handler) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	plan, err := h.SubscriptionService.CreatePlan(service.CreatePlanInput{
		Code:         req.Code,
		Name:         req.Name,
		MonthlyPrice: req.MonthlyPrice,
		MaxProducts:  req.MaxProducts,
		MaxQRCodes:   req.MaxQRCodes,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, plan)
}

type updatePlanRequest struct {
	Name        string `json:"name"`
	MaxProducts *int   `json:"max_products"`
	MaxQRCodes  *int   `json:"max_qr_codes"`
	IsActive    *bool  `json:"is_active"`
}

// UpdatePlan edits plan limits or deactivates it.
func (h *Handler) UpdatePlan(c *gin.Context) {
	planID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	plan, err := h.SubscriptionService.UpdatePlan(planID, req.Name, req.MaxProducts, req.MaxQRCodes, req.IsActive)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, plan)
}
