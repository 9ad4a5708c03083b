package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitlearn/quizlab-backend/internal/catalog"
	"github.com/fitlearn/quizlab-backend/internal/middleware"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/response"
	"github.com/fitlearn/quizlab-backend/internal/service"
	"github.com/fitlearn/quizlab-backend/internal/validator"
)

// PortalHandler handles member-facing quiz taking endpoints.
type PortalHandler struct {
	sessionService *service.SessionService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(sessionService *service.SessionService) *PortalHandler {
	return &PortalHandler{sessionService: sessionService}
}

// GetLobby godoc
// GET /api/v1/member/lobby?search=...&filter=all|completed|pending
// Returns published quizzes with the member's attempt status.
func (h *PortalHandler) GetLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	filter := catalog.StatusFilter(c.DefaultQuery("filter", string(catalog.FilterAll)))
	switch filter {
	case catalog.FilterAll, catalog.FilterCompleted, catalog.FilterPending:
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	lobby, err := h.sessionService.GetLobby(c.Request.Context(), claims.UserID, c.Query("search"), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if lobby == nil {
		lobby = []service.LobbyQuiz{}
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": lobby})
}

// StartQuiz godoc
// POST /api/v1/member/quizzes/:quiz_id/start
// Starts a new attempt or resumes an interrupted one. Returns the quiz
// payload (without answers) and the current session state.
func (h *PortalHandler) StartQuiz(c *gin.Context) {
	claims, quizID, ok := h.memberAndQuizID(c)
	if !ok {
		return
	}

	result, err := h.sessionService.StartSession(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// SaveAnswer godoc
// POST /api/v1/member/quizzes/:quiz_id/answers
// Saves one answer. Re-answering a question replaces the previous value.
func (h *PortalHandler) SaveAnswer(c *gin.Context) {
	claims, quizID, ok := h.memberAndQuizID(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.Answer(c.Request.Context(), quizID, claims.UserID, req); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// Navigate godoc
// POST /api/v1/member/quizzes/:quiz_id/navigate
// Moves the session position. Moves past either end clamp in place.
func (h *PortalHandler) Navigate(c *gin.Context) {
	claims, quizID, ok := h.memberAndQuizID(c)
	if !ok {
		return
	}

	var req struct {
		Move  string `json:"move" binding:"required,oneof=next previous goto"`
		Index int    `json:"index" binding:"omitempty,min=0"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.Navigate(quizID, claims.UserID, req.Move, req.Index); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetState godoc
// GET /api/v1/member/quizzes/:quiz_id/state
// Returns saved answers, position and remaining seconds. Works after a
// reconnect even when the in-process session is gone.
func (h *PortalHandler) GetState(c *gin.Context) {
	claims, quizID, ok := h.memberAndQuizID(c)
	if !ok {
		return
	}

	state, err := h.sessionService.State(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// SubmitQuiz godoc
// POST /api/v1/member/quizzes/:quiz_id/submit
// Grades the attempt and returns the submission. Idempotent per attempt.
func (h *PortalHandler) SubmitQuiz(c *gin.Context) {
	claims, quizID, ok := h.memberAndQuizID(c)
	if !ok {
		return
	}

	sub, err := h.sessionService.Submit(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

func (h *PortalHandler) memberAndQuizID(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return claims, quizID, true
}

func (h *PortalHandler) failSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotAvailable), errors.Is(err, service.ErrQuizNotPublished):
		response.Fail(c, http.StatusBadRequest, response.ErrQuizNotAvailable)
	case errors.Is(err, service.ErrSessionNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
