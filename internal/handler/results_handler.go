package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fitlearn/quizlab-backend/internal/middleware"
	"github.com/fitlearn/quizlab-backend/internal/response"
	"github.com/fitlearn/quizlab-backend/internal/service"
)

// ResultsHandler handles result review and statistics endpoints.
type ResultsHandler struct {
	resultsService *service.ResultsService
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(resultsService *service.ResultsService) *ResultsHandler {
	return &ResultsHandler{resultsService: resultsService}
}

// GetReview godoc
// GET /api/v1/member/quizzes/:quiz_id/review
// Returns the member's latest submission reviewed question by question:
// their answer, the correct answer, the explanation and the per-item status.
func (h *ResultsHandler) GetReview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	review, err := h.resultsService.Review(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSubmission):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"review": review})
}

// GetQuizStats godoc
// GET /api/v1/member/quizzes/:quiz_id/stats
// Returns the member-facing attempt stats for one quiz.
func (h *ResultsHandler) GetQuizStats(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	stats, err := h.resultsService.QuizStats(quizID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GetOverview godoc
// GET /api/v1/member/overview
// Returns aggregate stats across the whole catalog: quizzes taken, average
// score, pass rate.
func (h *ResultsHandler) GetOverview(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"overview": h.resultsService.Overview()})
}

// ListQuizResults godoc
// GET /api/v1/author/quizzes/:quiz_id/results?page=1&per_page=10
// Returns member outcomes for one quiz so the author can follow up. Scores
// are per member, latest attempt.
func (h *ResultsHandler) ListQuizResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, pagination, err := h.resultsService.ListQuizResults(c.Request.Context(), quizID, claims.UserID, page, perPage)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotQuizAuthor):
			response.Fail(c, http.StatusForbidden, response.ErrNotQuizAuthor)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}
