package public

import "github.com/spiral-platform/spiral-api/internal/provider"

// Handler serves the shopper and guest API surface.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
