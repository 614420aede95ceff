package admin

import (
	"github.com/chestno/chestno-api/internal/provider"
)

// Handler serves the back-office API: platform operators managing
// users, organizations, plans, moderation and access control.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
