package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Deekshi05/AceAI/internal/handlers"
	"github.com/Deekshi05/AceAI/internal/middleware"
	"github.com/Deekshi05/AceAI/internal/models"
)

func SessionRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, liveHandler *handlers.LiveHandler) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.Use(middleware.AuthOptional())

		r.With(middleware.ValidateRequest[*models.CreateInterviewRequest]()).Post("/", sessionHandler.CreateHandler)
		r.Get("/user/{userId}", sessionHandler.ListByUserHandler)

		r.Get("/{id}", sessionHandler.GetHandler)
		r.Delete("/{id}", sessionHandler.DeleteHandler)
		r.With(middleware.ValidateRequest[*models.UpdateStatusRequest]()).Patch("/{id}/status", sessionHandler.UpdateStatusHandler)

		r.With(middleware.ValidateRequest[*models.RecordAnswerRequest]()).Post("/{id}/responses", sessionHandler.RecordAnswerHandler)
		r.With(middleware.ValidateRequest[*models.AttachFeedbackRequest]()).Post("/{id}/responses/{questionIndex}/feedback", sessionHandler.AttachFeedbackHandler)
		r.With(middleware.ValidateRequest[*models.LogInteractionRequest]()).Post("/{id}/interactions", sessionHandler.LogInteractionHandler)

		r.Get("/{id}/review", sessionHandler.ReviewHandler)
		r.Post("/{id}/timeout-check", sessionHandler.TimeoutCheckHandler)

		r.Get("/{id}/live", liveHandler.InterviewWS)
	})
}
