package users

import (
	"net/http"

	"github.com/fileharbor/fileharbor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the account endpoints.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Register)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireToken)
		pr.Get("/me", h.Me)
	})

	return r
}
