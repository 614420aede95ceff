package admin

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetModerationQueue pages through pending reviews, oldest first.
func (h *Handler) GetModerationQueue(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	reviews, total, err := h.ReviewService.ModerationQueue(page, pageSize)
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

// ApproveReview publishes a pending review and credits the author.
func (h *Handler) ApproveReview(c *gin.Context) {
	reviewID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	adminID, ok := shared.ContextUint(c, "admin_id")
	if !ok {
		return
	}
	review, err := h.ReviewService.Approve(reviewID, adminID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("review_approved",
		"review_id", reviewID,
		"admin_id", adminID,
	)
	response.Success(c, review)
}

type rejectReviewRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectReview declines a pending review with a reason.
func (h *Handler) RejectReview(c *gin.Context) {
	reviewID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	adminID, ok := shared.ContextUint(c, "admin_id")
	if !ok {
		return
	}
	var req rejectReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	review, err := h.ReviewService.Reject(reviewID, adminID, req.Reason)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("review_rejected",
		"review_id", reviewID,
		"admin_id", adminID,
	)
	response.Success(c, review)
}

// DeleteReview removes a review outright, approved ones included.
func (h *Handler) DeleteReview(c *gin.Context) {
	reviewID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.ReviewService.Delete(reviewID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
