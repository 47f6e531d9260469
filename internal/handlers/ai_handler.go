package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/ai"
	"github.com/Deekshi05/AceAI/internal/middleware"
	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/recorder"
	"github.com/Deekshi05/AceAI/internal/repositories"
	"github.com/Deekshi05/AceAI/internal/upload"
	"github.com/Deekshi05/AceAI/internal/utils"
)

// maxResumeSize caps the multipart resume upload at 10 MB.
const maxResumeSize = 10 << 20

type AIHandler struct {
	provider ai.Provider
	uploader *upload.Client
	store    repositories.SessionStore
	recorder *recorder.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewAIHandler(provider ai.Provider, uploader *upload.Client, store repositories.SessionStore, rec *recorder.Recorder, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		provider: provider,
		uploader: uploader,
		store:    store,
		recorder: rec,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateHandler takes a job description and optionally a resume file,
// generates a question set and creates a scheduled session. When
// generation fails after a successful upload, the resume URL is still
// returned so the client can retry without re-uploading; no session is
// created in that case.
func (h *AIHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_form",
			Message: "expected a multipart form",
		})
		return
	}

	userID := r.FormValue("userId")
	jobTitle := r.FormValue("jobTitle")
	jobDescription := r.FormValue("jobDescription")
	if userID == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_user",
			Message: "userId is required",
		})
		return
	}
	if jobTitle == "" && jobDescription == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_job_context",
			Message: "provide a job title or description",
		})
		return
	}

	var resumeURL, fileName string
	if file, header, err := r.FormFile("resume"); err == nil {
		defer file.Close()
		fileName = header.Filename

		resumeURL, err = h.uploader.UploadResume(r.Context(), fileName, file)
		if err != nil {
			if errors.Is(err, upload.ErrNotConfigured) {
				utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
					Code:    "upload_unavailable",
					Message: "resume upload is not configured",
				})
				return
			}
			h.logger.Error("resume upload failed", zap.Error(err))
			utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
				Code:    "upload_failed",
				Message: "failed to store resume",
			})
			return
		}
	}

	generated, err := h.provider.GenerateQuestions(r.Context(), ai.QuestionRequest{
		ResumeURL:      resumeURL,
		FileName:       fileName,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
	})
	if err != nil {
		h.logger.Error("question generation failed",
			zap.String("provider", h.provider.GetProviderName()),
			zap.Error(err))
		utils.JSON(w, http.StatusOK, models.GenerateResponse{
			Success:   false,
			ResumeURL: resumeURL,
			Error:     "Failed to generate interview questions. Please try again.",
		})
		return
	}

	questions := make([]models.Question, len(generated))
	for i, q := range generated {
		questions[i] = models.Question{Question: q.Question, ExpectedAnswer: q.Answer}
	}

	now := h.now().UTC()
	session := &models.InterviewSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		ResumeURL:      resumeURL,
		Questions:      questions,
		Status:         models.StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.Create(r.Context(), session); err != nil {
		h.logger.Error("failed to create session after generation", zap.Error(err))
		utils.JSON(w, http.StatusOK, models.GenerateResponse{
			Success:   false,
			ResumeURL: resumeURL,
			Questions: questions,
			Error:     "Questions were generated but the interview could not be saved. Please try again.",
		})
		return
	}

	h.logger.Info("interview generated",
		zap.String("interview_id", session.ID),
		zap.String("user_id", userID),
		zap.Int("questions", len(questions)),
		zap.Bool("has_resume", resumeURL != ""))
	utils.JSON(w, http.StatusOK, models.GenerateResponse{
		Success:     true,
		InterviewID: session.ID,
		ResumeURL:   resumeURL,
		Questions:   questions,
	})
}

// QueryHandler relays an out-of-band question to the AI provider. The
// endpoint always answers 200: a provider failure degrades to the
// canned clarification instead of an error, and either way the exchange
// is logged to the session's interaction trail.
func (h *AIHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AIQueryRequest](r)

	session, err := h.store.Get(r.Context(), req.InterviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "session_not_found",
				Message: "interview session does not exist",
			})
			return
		}
		h.logger.Error("failed to load session for AI query", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "something went wrong",
		})
		return
	}

	var question string
	if req.QuestionIndex != nil && *req.QuestionIndex >= 0 && *req.QuestionIndex < len(session.Questions) {
		question = session.Questions[*req.QuestionIndex].Question
	}

	resp := models.AIQueryResponse{
		Type:    string(ai.KindClarification),
		Content: ai.FallbackClarification,
	}
	reply, err := h.provider.RespondToAnswer(r.Context(), ai.FeedbackRequest{
		Type:          ai.RequestTypeUserQuery,
		Question:      question,
		UserQuery:     req.UserQuery,
		InterviewID:   req.InterviewID,
		QuestionIndex: req.QuestionIndex,
		Timestamp:     h.now().UTC(),
	})
	if err != nil {
		h.logger.Warn("AI query failed, serving fallback",
			zap.String("interview_id", req.InterviewID),
			zap.Error(err))
	} else if classified := ai.Classify(reply); classified.Content != "" {
		resp = models.AIQueryResponse{Type: string(classified.Kind), Content: classified.Content}
	}

	if _, err := h.recorder.LogInteraction(r.Context(), req.InterviewID, models.InteractionQuery, req.UserQuery, resp.Content, req.QuestionIndex); err != nil {
		h.logger.Warn("failed to log AI query",
			zap.String("interview_id", req.InterviewID),
			zap.Error(err))
	}

	utils.JSON(w, http.StatusOK, resp)
}
