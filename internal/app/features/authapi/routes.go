package authapi

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the connect/disconnect endpoints directly on the
// parent router, since both live at the API root.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/connect", h.Connect)
	r.Get("/disconnect", h.Disconnect)
}
