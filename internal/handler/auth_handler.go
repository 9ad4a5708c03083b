package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitlearn/quizlab-backend/internal/middleware"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/repository"
	"github.com/fitlearn/quizlab-backend/internal/response"
	"github.com/fitlearn/quizlab-backend/internal/service"
	"github.com/fitlearn/quizlab-backend/internal/validator"
)

// AuthHandler handles authentication endpoints for members and authors.
type AuthHandler struct {
	authService *service.AuthService
	memberRepo  *repository.MemberRepository
	authorRepo  *repository.AuthorRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	memberRepo *repository.MemberRepository,
	authorRepo *repository.AuthorRepository,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		memberRepo:  memberRepo,
		authorRepo:  authorRepo,
	}
}

// MemberRegister godoc
// POST /api/v1/auth/member/register
// Creates a new member account.
func (h *AuthHandler) MemberRegister(c *gin.Context) {
	var req model.CreateMemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	member := &model.Member{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.memberRepo.Create(c.Request.Context(), member); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"member": member})
}

// MemberLogin godoc
// POST /api/v1/auth/member/login
// Validates email + password, checks for an existing login (rejects if
// active on another device), returns JWT.
func (h *AuthHandler) MemberLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	member, err := h.memberRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(member.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateMemberToken(c.Request.Context(), member.ID)
	if err != nil {
		if errors.Is(err, service.ErrLoginAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.MemberLoginResponse{
		Token:  token,
		Member: *member,
	})
}

// AuthorLogin godoc
// POST /api/v1/auth/author/login
// Validates email + password, returns JWT. Authors have no single-device
// restriction.
func (h *AuthHandler) AuthorLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	author, err := h.authorRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(author.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateAuthorToken(author.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.AuthorLoginResponse{
		Token:  token,
		Author: *author,
	})
}

// MemberLogout godoc
// POST /api/v1/auth/member/logout
// Releases the member's single-device login so they can log in elsewhere.
func (h *AuthHandler) MemberLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetMemberLogin(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetMemberProfile godoc
// GET /api/v1/auth/member/me
// Returns the profile of the currently authenticated member.
func (h *AuthHandler) GetMemberProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	member, err := h.memberRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": member})
}

// GetAuthorProfile godoc
// GET /api/v1/auth/author/me
// Returns the profile of the currently authenticated author.
func (h *AuthHandler) GetAuthorProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	author, err := h.authorRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"author": author})
}
