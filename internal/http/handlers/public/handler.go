package public

import "github.com/chestno/chestno-api/internal/provider"

// Handler serves the consumer-facing API: scan redirects, public
// catalog, accounts, reviews, rewards and warranty.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
