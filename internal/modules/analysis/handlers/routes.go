package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.HandleAnalyze)
	r.Route("/companies", func(r chi.Router) {
		r.Get("/{symbol}/history", h.HandleGetHistory)
		r.Get("/{symbol}/latest", h.HandleGetLatest)
		r.Get("/{symbol}/analyses/{id}", h.HandleGetAnalysis)
	})
	r.Route("/analyses", func(r chi.Router) {
		r.Get("/{id}", h.HandleGetAnalysis)
	})
}
