package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all optimization routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/optimization", func(r chi.Router) {
		r.Post("/risk-optimization", h.HandleRiskOptimization)
		r.Post("/project", h.HandleProject)
		r.Get("/channels", h.HandleGetChannels)
		r.Get("/risk-register", h.HandleGetRiskRegister)
		r.Get("/projects/{id}", h.HandleGetProjectHistory)
	})
}
