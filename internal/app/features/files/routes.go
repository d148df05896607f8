package files

import (
	"net/http"

	"github.com/fileharbor/fileharbor/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the file management endpoints.
//
// The identity-loading middleware is expected to run further up the chain;
// these routes only enforce which endpoints require it. The data endpoint
// stays open because public records are retrievable without a token.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireToken)
		pr.Post("/", h.Create)
		pr.Get("/", h.Index)
		pr.Get("/{id}", h.Show)
		pr.Put("/{id}/publish", h.Publish)
		pr.Put("/{id}/unpublish", h.Unpublish)
	})

	r.Get("/{id}/data", h.Data)

	return r
}
