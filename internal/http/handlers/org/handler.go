package org

import (
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/http/handlers/shared"
	"github.com/chestno/chestno-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler serves the producer console: everything scoped to one
// organization the caller is a member of.
type Handler struct {
	*provider.Container
}

// New creates the org handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// requireOrg authenticates the caller's membership at minRole and
// returns the org and user IDs. On failure the response is written.
func (h *Handler) requireOrg(c *gin.Context, minRole string) (orgID, userID uint, ok bool) {
	userID, ok = shared.ContextUint(c, "user_id")
	if !ok {
		return 0, 0, false
	}
	orgID, ok = shared.ParamUint(c, "id")
	if !ok {
		return 0, 0, false
	}
	if _, err := h.MemberService.RequireRole(orgID, userID, minRole); err != nil {
		shared.RespondServiceError(c, err)
		return 0, 0, false
	}
	return orgID, userID, true
}

func (h *Handler) requireViewer(c *gin.Context) (uint, uint, bool) {
	return h.requireOrg(c, constants.OrgRoleViewer)
}

func (h *Handler) requireManager(c *gin.Context) (uint, uint, bool) {
	return h.requireOrg(c, constants.OrgRoleManager)
}

func (h *Handler) requireOwner(c *gin.Context) (uint, uint, bool) {
	return h.requireOrg(c, constants.OrgRoleOwner)
}
