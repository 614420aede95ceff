package org

import (
	"strconv"

	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetScanEvents pages through the organization's scan history.
func (h *Handler) GetScanEvents(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	filter := repository.ScanEventListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: orgID,
		SourceKind:     c.Query("source"),
		Country:        c.Query("country"),
	}
	if qrID, err := strconv.ParseUint(c.Query("qr_id"), 10, 32); err == nil {
		filter.QRCodeID = uint(qrID)
	}
	events, total, err := h.ScanService.ListEvents(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, events, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetScanStats returns per-day scan counts for the dashboard chart.
func (h *Handler) GetScanStats(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}
	counts, err := h.ScanService.DailyCounts(orgID, days)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, counts)
}

// GetReviews pages through reviews of the organization's products.
func (h *Handler) GetReviews(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	reviews, total, err := h.ReviewService.List(repository.ReviewListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: orgID,
		Status:         c.Query("status"),
	})
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

type replyReviewRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// ReplyToReview posts the organization's public answer to a review.
func (h *Handler) ReplyToReview(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	reviewID, ok := shared.ParamUint(c, "review_id")
	if !ok {
		return
	}
	var req replyReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	review, err := h.ReviewService.Reply(orgID, reviewID, req.Reply)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, review)
}

// GetWarrantyClaims pages through claims against the organization's
// products.
func (h *Handler) GetWarrantyClaims(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	claims, total, err := h.WarrantyService.List(repository.WarrantyListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: orgID,
		Status:         c.Query("status"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, claims, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

type respondClaimRequest struct {
	Status     string `json:"status" binding:"required"`
	Resolution string `json:"resolution"`
}

// RespondToClaim moves a claim through its lifecycle.
func (h *Handler) RespondToClaim(c *gin.Context) {
	orgID, _, ok := h.requireManager(c)
	if !ok {
		return
	}
	claimID, ok := shared.ParamUint(c, "claim_id")
	if !ok {
		return
	}
	var req respondClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	claim, err := h.WarrantyService.Respond(orgID, claimID, req.Status, req.Resolution)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// GetAnomalies pages through the organization's anomaly alerts.
func (h *Handler) GetAnomalies(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	alerts, total, err := h.AnomalyService.List(repository.AnomalyListFilter{
		Page:           page,
		PageSize:       pageSize,
		OrganizationID: orgID,
		Kind:           c.Query("kind"),
		Status:         c.Query("status"),
	})
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

// AcknowledgeAnomaly lets the organization's owner close one of its own
// alerts after reviewing it.
func (h *Handler) AcknowledgeAnomaly(c *gin.Context) {
	orgID, userID, ok := h.requireOwner(c)
	if !ok {
		return
	}
	alertID, ok := shared.ParamUint(c, "alert_id")
	if !ok {
		return
	}
	if err := h.AnomalyService.AcknowledgeForOrg(orgID, alertID, userID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("anomaly_alert_acknowledged",
		"org_id", orgID, "alert_id", alertID, "user_id", userID)
	response.Success(c, nil)
}

// LiveFeed upgrades the connection and streams scan events as they are
// recorded. The membership check runs before the upgrade; after it the
// response belongs to the websocket.
func (h *Handler) LiveFeed(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	if err := h.LiveHub.Subscribe(orgID, c.Writer, c.Request); err != nil {
		shared.RequestLog(c).Warnw("ws_subscribe_failed", "org_id", orgID, "error", err)
	}
}
