package admin

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetUsers pages through consumer accounts.
func (h *Handler) GetUsers(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, users, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetUser fetches one consumer account.
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	user, err := h.UserService.Get(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	balance, err := h.RewardService.Balance(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":           user,
		"reward_balance": balance,
	})
}

type setUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetUserStatus enables or disables an account. Disabling kills the
// user's sessions.
func (h *Handler) SetUserStatus(c *gin.Context) {
	userID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req setUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.UserService.SetStatus(userID, req.Status); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_user_status_changed",
		"user_id", userID,
		"status", req.Status,
	)
	response.Success(c, nil)
}

type adjustRewardRequest struct {
	UserID  uint   `json:"user_id" binding:"required"`
	Points  int64  `json:"points" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// AdjustRewards credits or debits reward points manually.
func (h *Handler) AdjustRewards(c *gin.Context) {
	var req adjustRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.RewardService.AdminAdjust(req.UserID, req.Points, req.Comment); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	balance, err := h.RewardService.Balance(req.UserID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_rewards_adjusted",
		"user_id", req.UserID,
		"points", req.Points,
	)
	response.Success(c, gin.H{"balance": balance})
}
