package admin

import (
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/http/response"
	"github.com/chestno/chestno-api/internal/models"

	"github.com/gin-gonic/gin"
)

// GetRoles lists known roles.
func (h *Handler) GetRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateRole registers a role name.
func (h *Handler) CreateRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// DeleteRole removes a role and its policies.
func (h *Handler) DeleteRole(c *gin.Context) {
	if err := h.AuthzService.DeleteRole(c.Param("role")); err != nil {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, nil)
}

// GetRolePolicies lists a role's grants.
func (h *Handler) GetRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, policies)
}

type policyRequest struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GrantRolePolicy adds one grant to a role.
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	var req policyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(c.Param("role"), req.Object, req.Action); err != nil {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, nil)
}

// RevokeRolePolicy removes one grant from a role.
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	var req policyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(c.Param("role"), req.Object, req.Action); err != nil {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, nil)
}

// GetAdmins pages through operator accounts with their roles.
func (h *Handler) GetAdmins(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	admins, total, err := h.AdminRepo.List(page, pageSize)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	type adminView struct {
		models.Admin
		Roles []string `json:"roles"`
	}
	views := make([]adminView, 0, len(admins))
	for _, a := range admins {
		roles, err := h.AuthzService.GetAdminRoles(a.ID)
		if err != nil {
			shared.RespondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		views = append(views, adminView{Admin: a, Roles: roles})
	}
	response.SuccessWithPage(c, views, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

type createAdminRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Roles    []string `json:"roles"`
}

// CreateAdmin registers an operator account.
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthService.ValidatePassword(req.Password); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	existing, err := h.AdminRepo.GetByUsername(req.Username)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if existing != nil {
		shared.RespondErrorWithMsg(c, response.CodeConflict, "username taken", nil)
		return
	}
	hash, err := h.AuthService.HashPassword(req.Password)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	admin := &models.Admin{
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
	}
	shared.RequestLog(c).Infow("admin_account_created",
		"admin_id", admin.ID,
		"username", admin.Username,
	)
	response.Success(c, admin)
}

type setAdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// SetAdminRoles replaces an operator's role set.
func (h *Handler) SetAdminRoles(c *gin.Context) {
	adminID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req setAdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, nil)
}

// DeleteAdmin removes an operator account. Self-deletion is refused.
func (h *Handler) DeleteAdmin(c *gin.Context) {
	adminID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	callerID, ok := shared.ContextUint(c, "admin_id")
	if !ok {
		return
	}
	if adminID == callerID {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, "cannot delete own account", nil)
		return
	}
	target, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if target == nil {
		shared.RespondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, nil); err != nil {
		shared.RespondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	if err := h.AdminRepo.Delete(adminID); err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	shared.RequestLog(c).Infow("admin_account_deleted", "admin_id", adminID)
	response.Success(c, nil)
}
