package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Deekshi05/AceAI/internal/handlers"
	"github.com/Deekshi05/AceAI/internal/middleware"
	"github.com/Deekshi05/AceAI/internal/models"
)

func AIRoutes(router *chi.Mux, aiHandler *handlers.AIHandler) {
	router.Route("/api/v1/ai", func(r chi.Router) {
		r.Post("/generate", aiHandler.GenerateHandler)
		r.With(middleware.ValidateRequest[*models.AIQueryRequest]()).Post("/query", aiHandler.QueryHandler)
	})
}
