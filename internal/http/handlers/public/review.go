package public

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
)

type submitReviewRequest struct {
	ProductID uint     `json:"product_id" binding:"required"`
	Rating    int      `json:"rating" binding:"required"`
	Body      string   `json:"body"`
	Photos    []string `json:"photos"`
}

// SubmitReview files a review for moderation.
func (h *Handler) SubmitReview(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	review, err := h.ReviewService.Submit(userID, service.SubmitReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Body:      req.Body,
		Photos:    req.Photos,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, review)
}

// GetMyReviews pages through the user's own reviews, any status.
func (h *Handler) GetMyReviews(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	items, total, err := h.ReviewService.ListByUser(userID, page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

type fileClaimRequest struct {
	ProductID     uint   `json:"product_id" binding:"required"`
	Subject       string `json:"subject" binding:"required"`
	Description   string `json:"description"`
	PurchaseProof string `json:"purchase_proof"`
}

// FileWarrantyClaim opens a warranty claim against a product.
func (h *Handler) FileWarrantyClaim(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	var req fileClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	claim, err := h.WarrantyService.File(userID, service.FileClaimInput{
		ProductID:     req.ProductID,
		Subject:       req.Subject,
		Description:   req.Description,
		PurchaseProof: req.PurchaseProof,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// GetMyWarrantyClaims pages through the user's claims.
func (h *Handler) GetMyWarrantyClaims(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	items, total, err := h.WarrantyService.List(repository.WarrantyListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetMyWarrantyClaim fetches one of the user's claims.
func (h *Handler) GetMyWarrantyClaim(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	claimID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	claim, err := h.WarrantyService.GetForUser(userID, claimID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}
