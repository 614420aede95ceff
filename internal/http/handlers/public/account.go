package public

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCurrentUser returns the authenticated account.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	user, err := h.UserService.Get(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

type updateProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	Locale       *string `json:"locale"`
	TelegramChat *string `json:"telegram_chat"`
}

// UpdateUserProfile edits the authenticated account's profile.
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	user, err := h.UserService.UpdateProfile(userID, service.UpdateProfileInput{
		DisplayName:  req.DisplayName,
		Locale:       req.Locale,
		TelegramChat: req.TelegramChat,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// GetMyOrgs lists the organizations the user belongs to.
func (h *Handler) GetMyOrgs(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	memberships, err := h.MemberService.ListUserOrgs(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, memberships)
}

// GetRewardBalance returns the user's point balance.
func (h *Handler) GetRewardBalance(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	balance, err := h.RewardService.Balance(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"balance": balance})
}

// GetRewardHistory pages through the user's point transactions.
func (h *Handler) GetRewardHistory(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	items, total, err := h.RewardService.History(userID, page, pageSize)
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

// GetMyFollows pages through the organizations the user follows.
func (h *Handler) GetMyFollows(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	orgs, total, err := h.SocialService.ListFollowed(userID, page, pageSize)
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

// FollowOrg subscribes the user to an organization.
func (h *Handler) FollowOrg(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	orgID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.SocialService.Follow(userID, orgID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// UnfollowOrg removes the subscription.
func (h *Handler) UnfollowOrg(c *gin.Context) {
	userID, ok := shared.ContextUint(c, "user_id")
	if !ok {
		return
	}
	orgID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.SocialService.Unfollow(userID, orgID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
