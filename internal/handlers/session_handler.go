package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/middleware"
	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/recorder"
	"github.com/Deekshi05/AceAI/internal/repositories"
	"github.com/Deekshi05/AceAI/internal/state"
	"github.com/Deekshi05/AceAI/internal/timeout"
	"github.com/Deekshi05/AceAI/internal/utils"
)

type SessionHandler struct {
	store    repositories.SessionStore
	machine  *state.Machine
	recorder *recorder.Recorder
	policy   timeout.Policy
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionHandler(store repositories.SessionStore, machine *state.Machine, rec *recorder.Recorder, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		store:    store,
		machine:  machine,
		recorder: rec,
		policy:   timeout.NewPolicy(),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateHandler stores a pre-generated question set as a new scheduled
// session. Times stay unset until the interview actually opens.
func (h *SessionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateInterviewRequest](r)

	now := h.now().UTC()
	session := &models.InterviewSession{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		ResumeURL:      req.ResumeURL,
		Questions:      req.Questions,
		Status:         models.StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.store.Create(r.Context(), session); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("interview session created",
		zap.String("interview_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.Int("questions", len(session.Questions)))
	utils.JSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, session)
}

func (h *SessionHandler) ListByUserHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.machine.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "interview deleted"})
}

// UpdateStatusHandler drives an explicit lifecycle transition. All
// transitions go through the state machine, so competing terminal
// writes surface as conflicts here.
func (h *SessionHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.UpdateStatusRequest](r)
	id := chi.URLParam(r, "id")

	var err error
	switch req.Status {
	case models.StatusInProgress:
		_, err = h.machine.Start(r.Context(), id)
	case models.StatusCompleted:
		err = h.machine.Complete(r.Context(), id)
	case models.StatusTimedOut:
		reason := req.Reason
		if reason == "" {
			reason = timeout.ReasonInactivity
		}
		err = h.machine.Expire(r.Context(), id, reason)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	session, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, session)
}

func (h *SessionHandler) RecordAnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RecordAnswerRequest](r)
	id := chi.URLParam(r, "id")

	response, err := h.recorder.RecordAnswer(r.Context(), id, *req.QuestionIndex, req.Question, req.ExpectedAnswer, req.UserAnswer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, response)
}

// AttachFeedbackHandler sets feedback on the first response matching the
// question index. A missing match is not an error; the annotation is
// simply dropped.
func (h *SessionHandler) AttachFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AttachFeedbackRequest](r)
	id := chi.URLParam(r, "id")

	questionIndex, err := parseIndex(chi.URLParam(r, "questionIndex"))
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_question_index",
			Message: "questionIndex must be a non-negative integer",
		})
		return
	}

	if err := h.recorder.AttachFeedback(r.Context(), id, questionIndex, req.Feedback); err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "feedback recorded"})
}

func (h *SessionHandler) LogInteractionHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LogInteractionRequest](r)
	id := chi.URLParam(r, "id")

	interaction, err := h.recorder.LogInteraction(r.Context(), id, req.Kind, req.UserQuery, req.AIResponse, req.QuestionIndex)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, interaction)
}

// ReviewHandler returns the post-interview read model: every scored
// response, feedback included, plus the AI exchange trail.
func (h *SessionHandler) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	review := models.SessionReview{
		InterviewID:    session.ID,
		Status:         session.Status,
		Responses:      session.Responses,
		AIInteractions: session.AIInteractions,
	}
	if review.Responses == nil {
		review.Responses = []models.Response{}
	}
	if review.AIInteractions == nil {
		review.AIInteractions = []models.Interaction{}
	}
	utils.JSON(w, http.StatusOK, review)
}

// TimeoutCheckHandler runs the lazy expiry check. A session past its
// inactivity window is closed here and reported as timed out; an
// already-terminal session is reported as-is.
func (h *SessionHandler) TimeoutCheckHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	now := h.now().UTC()

	if !session.Status.Terminal() && h.policy.SessionExpired(session, now) {
		if err := h.machine.Expire(r.Context(), id, timeout.ReasonInactivity); err != nil && !errors.Is(err, state.ErrSessionTerminal) {
			h.writeError(w, err)
			return
		}
		session, err = h.store.Get(r.Context(), id)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	resp := models.TimeoutCheckResponse{
		InterviewID:   session.ID,
		Status:        session.Status,
		IsTimedOut:    session.IsTimedOut,
		TimeoutReason: session.TimeoutReason,
	}
	if !session.Status.Terminal() {
		if ref, ok := h.policy.Reference(session); ok {
			resp.RemainingMs = h.policy.Remaining(ref, now).Milliseconds()
		} else {
			resp.RemainingMs = h.policy.Threshold.Milliseconds()
		}
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) writeError(w http.ResponseWriter, err error) {
	var errResp *models.ErrorResponse
	switch {
	case errors.As(err, &errResp):
		utils.JSON(w, http.StatusBadRequest, *errResp)
	case errors.Is(err, repositories.ErrSessionNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "interview session does not exist",
		})
	case errors.Is(err, state.ErrSessionTerminal):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_ended",
			Message: "interview already ended",
		})
	case errors.Is(err, state.ErrInvalidTransition):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "invalid_transition",
			Message: err.Error(),
		})
	default:
		h.logger.Error("session request failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "internal_error",
			Message: "something went wrong",
		})
	}
}

func parseIndex(raw string) (int, error) {
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, errors.New("negative index")
	}
	return idx, nil
}
