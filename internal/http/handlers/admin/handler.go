package admin

import "github.com/spiral-platform/spiral-api/internal/provider"

// Handler serves the back-office API surface.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
