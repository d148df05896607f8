package status

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the status and stats endpoints directly on the
// parent router, since both live at the API root.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/status", h.Status)
	r.Get("/stats", h.Stats)
}
