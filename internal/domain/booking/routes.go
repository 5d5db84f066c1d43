package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns booking router. Draft and submit routes accept guests.
func (h *Handler) Routes(authMiddleware, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/draft", h.GetDraft)
		r.Put("/draft", h.UpdateDraft)
		r.Delete("/draft", h.ClearDraft)
		r.Post("/draft/reserve", h.Reserve)
		r.Post("/submit", h.Submit)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListMine)
	})

	return r
}
