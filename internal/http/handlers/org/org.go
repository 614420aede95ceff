package org

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetOrg returns the organization as its members see it, trust score
// included.
func (h *Handler) GetOrg(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	org, err := h.OrgService.GetByID(orgID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	followers, err := h.SocialService.FollowerCount(orgID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"organization": org,
		"followers":    followers,
	})
}

type updateOrgRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Website      *string `json:"website"`
	Country      *string `json:"country"`
	ContactEmail *string `json:"contact_email"`
	TelegramChat *string `json:"telegram_chat"`
}

// UpdateOrg edits the organization profile. Owner only.
func (h *Handler) UpdateOrg(c *gin.Context) {
	orgID, _, ok := h.requireOwner(c)
	if !ok {
		return
	}
	var req updateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	org, err := h.OrgService.Update(orgID, service.UpdateOrgInput{
		Name:         req.Name,
		Description:  req.Description,
		Website:      req.Website,
		Country:      req.Country,
		ContactEmail: req.ContactEmail,
		TelegramChat: req.TelegramChat,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, org)
}

// GetMembers lists the organization's staff.
func (h *Handler) GetMembers(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	members, err := h.MemberService.ListMembers(orgID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, members)
}

type inviteMemberRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// InviteMember adds a registered user to the organization.
func (h *Handler) InviteMember(c *gin.Context) {
	orgID, _, ok := h.requireOwner(c)
	if !ok {
		return
	}
	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	member, err := h.MemberService.Invite(orgID, req.Email, req.Role)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, member)
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeMemberRole updates a member's role.
func (h *Handler) ChangeMemberRole(c *gin.Context) {
	orgID, _, ok := h.requireOwner(c)
	if !ok {
		return
	}
	memberUserID, ok := shared.ParamUint(c, "user_id")
	if !ok {
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.MemberService.ChangeRole(orgID, memberUserID, req.Role); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveMember drops a member from the organization.
func (h *Handler) RemoveMember(c *gin.Context) {
	orgID, _, ok := h.requireOwner(c)
	if !ok {
		return
	}
	memberUserID, ok := shared.ParamUint(c, "user_id")
	if !ok {
		return
	}
	if err := h.MemberService.Remove(orgID, memberUserID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetSubscription returns the active subscription and plan.
func (h *Handler) GetSubscription(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	sub, plan, err := h.SubscriptionService.Current(orgID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"subscription": sub,
		"plan":         plan,
	})
}

// GetSubscriptionHistory lists past and present subscriptions.
func (h *Handler) GetSubscriptionHistory(c *gin.Context) {
	orgID, _, ok := h.requireViewer(c)
	if !ok {
		return
	}
	subs, err := h.SubscriptionService.History(orgID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, subs)
}
