package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fitlearn/quizlab-backend/internal/middleware"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/quiz"
	"github.com/fitlearn/quizlab-backend/internal/response"
	"github.com/fitlearn/quizlab-backend/internal/service"
	"github.com/fitlearn/quizlab-backend/internal/validator"
)

// QuizHandler handles author-facing quiz building endpoints.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuiz godoc
// POST /api/v1/author/quizzes
// Creates an empty draft quiz from metadata.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.quizService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": created})
}

// ListQuizzes godoc
// GET /api/v1/author/quizzes?page=1&per_page=10&search=...
// Returns the author's quizzes, newest first.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	quizzes, pagination, err := h.quizService.ListByAuthor(c.Request.Context(), claims.UserID, page, perPage, search)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, pagination)
}

// GetQuiz godoc
// GET /api/v1/author/quizzes/:quiz_id
// Returns one quiz with its full question list, answers included.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return
	}

	q, err := h.quizService.GetForAuthor(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": q})
}

// UpdateQuiz godoc
// PUT /api/v1/author/quizzes/:quiz_id
// Updates draft metadata: title, description, time limit, passing score.
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.quizService.UpdateMetadata(c.Request.Context(), quizID, claims.UserID, req)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": updated})
}

// DeleteQuiz godoc
// DELETE /api/v1/author/quizzes/:quiz_id
// Deletes a draft. Published quizzes are archived instead.
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quizID, claims.UserID); err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// AddQuestion godoc
// POST /api/v1/author/quizzes/:quiz_id/questions
// Appends a blank question of the requested type.
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.quizService.AddQuestion(c.Request.Context(), quizID, claims.UserID, model.QuestionType(req.Type))
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": updated})
}

// UpdateQuestion godoc
// PATCH /api/v1/author/quizzes/:quiz_id/questions/:question_id
// Merges a partial edit: text, points, correct index, explanation.
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	claims, quizID, questionID, ok := h.authorQuizAndQuestionID(c)
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.quizService.UpdateQuestion(c.Request.Context(), quizID, claims.UserID, questionID, req)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": updated})
}

// DeleteQuestion godoc
// DELETE /api/v1/author/quizzes/:quiz_id/questions/:question_id
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	claims, quizID, questionID, ok := h.authorQuizAndQuestionID(c)
	if !ok {
		return
	}

	updated, err := h.quizService.DeleteQuestion(c.Request.Context(), quizID, claims.UserID, questionID)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": updated})
}

// MoveQuestion godoc
// POST /api/v1/author/quizzes/:quiz_id/questions/:question_id/move
// Swaps the question with its neighbor. Moves past either end are no-ops.
func (h *QuizHandler) MoveQuestion(c *gin.Context) {
	claims, quizID, questionID, ok := h.authorQuizAndQuestionID(c)
	if !ok {
		return
	}

	var req model.MoveQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.quizService.MoveQuestion(c.Request.Context(), quizID, claims.UserID, questionID, quiz.MoveDirection(req.Direction))
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": updated})
}

// AddOption godoc
// POST /api/v1/author/quizzes/:quiz_id/questions/:question_id/options
// Appends an empty option to a multiple-choice question.
func (h *QuizHandler) AddOption(c *gin.Context) {
	claims, quizID, questionID, ok := h.authorQuizAndQuestionID(c)
	if !ok {
		return
	}

	updated, err := h.quizService.AddOption(c.Request.Context(), quizID, claims.UserID, questionID)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": updated})
}

// UpdateOption godoc
// PUT /api/v1/author/quizzes/:quiz_id/questions/:question_id/options/:index
func (h *QuizHandler) UpdateOption(c *gin.Context) {
	claims, quizID, questionID, ok := h.authorQuizAndQuestionID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.quizService.UpdateOption(c.Request.Context(), quizID, claims.UserID, questionID, index, req.Value)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": updated})
}

// DeleteOption godoc
// DELETE /api/v1/author/quizzes/:quiz_id/questions/:question_id/options/:index
// Refused when the question would drop below two options.
func (h *QuizHandler) DeleteOption(c *gin.Context) {
	claims, quizID, questionID, ok := h.authorQuizAndQuestionID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	updated, err := h.quizService.DeleteOption(c.Request.Context(), quizID, claims.UserID, questionID, index)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": updated})
}

// ValidateQuiz godoc
// GET /api/v1/author/quizzes/:quiz_id/validate
// Returns per-question problems, keyed by question id. Empty when publishable.
func (h *QuizHandler) ValidateQuiz(c *gin.Context) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return
	}

	problems, err := h.quizService.Validate(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	if problems == nil {
		problems = map[uuid.UUID]map[string]string{}
	}
	response.Success(c, http.StatusOK, gin.H{"problems": problems})
}

// PublishQuiz godoc
// POST /api/v1/author/quizzes/:quiz_id/publish
// Moves a valid draft to PUBLISHED and warms its Redis payload.
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return
	}

	if err := h.quizService.Publish(c.Request.Context(), quizID, claims.UserID); err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": string(model.QuizStatusPublished)})
}

// ArchiveQuiz godoc
// POST /api/v1/author/quizzes/:quiz_id/archive
// Retires a published quiz. Recorded results stay queryable.
func (h *QuizHandler) ArchiveQuiz(c *gin.Context) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return
	}

	if err := h.quizService.Archive(c.Request.Context(), quizID, claims.UserID); err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": string(model.QuizStatusArchived)})
}

func (h *QuizHandler) authorAndQuizID(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
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

func (h *QuizHandler) authorQuizAndQuestionID(c *gin.Context) (*service.Claims, uuid.UUID, uuid.UUID, bool) {
	claims, quizID, ok := h.authorAndQuizID(c)
	if !ok {
		return nil, uuid.Nil, uuid.Nil, false
	}

	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, uuid.Nil, false
	}
	return claims, quizID, questionID, true
}

// failQuizError maps quiz service errors to response codes.
func (h *QuizHandler) failQuizError(c *gin.Context, err error) {
	var validationErr *service.QuizValidationError

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizAuthor)
	case errors.Is(err, service.ErrQuizNotDraft):
		response.Fail(c, http.StatusConflict, response.ErrQuizNotDraft)
	case errors.Is(err, service.ErrQuizNotPublished):
		response.Fail(c, http.StatusConflict, response.ErrQuizNotPublished)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNoQuestions), errors.Is(err, quiz.ErrNotSavable):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrQuizNotSavable)
	case errors.Is(err, quiz.ErrMinOptions):
		response.Fail(c, http.StatusConflict, response.ErrMinOptions)
	case errors.Is(err, quiz.ErrFixedOptions):
		response.Fail(c, http.StatusConflict, response.ErrFixedOptions)
	case errors.As(err, &validationErr):
		fields := make(map[string]string, len(validationErr.Problems))
		for questionID, problems := range validationErr.Problems {
			for field, msg := range problems {
				fields[questionID.String()+"."+field] = msg
			}
		}
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrQuizInvalid, fields)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
