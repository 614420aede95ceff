package admin

import (
	"strconv"

	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAnomalies pages through anomaly alerts platform-wide.
func (h *Handler) GetAnomalies(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	filter := repository.AnomalyListFilter{
		Page:     page,
		PageSize: pageSize,
		Kind:     c.Query("kind"),
		Status:   c.Query("status"),
	}
	if orgID, err := strconv.ParseUint(c.Query("org_id"), 10, 32); err == nil {
		filter.OrganizationID = uint(orgID)
	}
	alerts, total, err := h.AnomalyService.List(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, alerts, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// AcknowledgeAnomaly closes an open alert.
func (h *Handler) AcknowledgeAnomaly(c *gin.Context) {
	alertID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	adminID, ok := shared.ContextUint(c, "admin_id")
	if !ok {
		return
	}
	if err := h.AnomalyService.Acknowledge(alertID, adminID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("anomaly_alert_acknowledged",
		"alert_id", alertID,
		"admin_id", adminID,
	)
	response.Success(c, nil)
}
