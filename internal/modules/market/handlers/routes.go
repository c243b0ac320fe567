package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/trending", h.HandleGetTrending)
		r.Get("/sectors", h.HandleGetSectors)
		r.Get("/companies", h.HandleGetCompanies)
		r.Get("/indices", h.HandleGetIndices)
	})
	r.Get("/portfolio", h.HandleGetPortfolio)
}
