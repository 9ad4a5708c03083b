package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fitlearn/quizlab-backend/internal/config"
	"github.com/fitlearn/quizlab-backend/internal/handler"
	"github.com/fitlearn/quizlab-backend/internal/middleware"
	"github.com/fitlearn/quizlab-backend/internal/response"
	"github.com/fitlearn/quizlab-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Quiz    *handler.QuizHandler
	Portal  *handler.PortalHandler
	Results *handler.ResultsHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/member/register", handlers.Auth.MemberRegister)
		auth.POST("/member/login", handlers.Auth.MemberLogin)
		auth.POST("/author/login", handlers.Auth.AuthorLogin)

		// Authenticated profile routes
		auth.POST("/member/logout", middleware.RequireMemberJWT(authService), handlers.Auth.MemberLogout)
		auth.GET("/member/me", middleware.RequireMemberJWT(authService), handlers.Auth.GetMemberProfile)
		auth.GET("/author/me", middleware.RequireAuthorJWT(authService), handlers.Auth.GetAuthorProfile)
	}

	// ─── 2. Member Group (JWT + Single Device) ─────────────────────────
	memberAPI := router.Group("/api/v1/member")
	memberAPI.Use(
		middleware.RequireMemberJWT(authService),
		middleware.CheckSingleDeviceLogin(authService),
	)
	{
		memberAPI.GET("/lobby", handlers.Portal.GetLobby)
		memberAPI.GET("/overview", handlers.Results.GetOverview)

		memberAPI.POST("/quizzes/:quiz_id/start", handlers.Portal.StartQuiz)
		memberAPI.POST("/quizzes/:quiz_id/answers", handlers.Portal.SaveAnswer)
		memberAPI.POST("/quizzes/:quiz_id/navigate", handlers.Portal.Navigate)
		memberAPI.GET("/quizzes/:quiz_id/state", handlers.Portal.GetState)
		memberAPI.POST("/quizzes/:quiz_id/submit", handlers.Portal.SubmitQuiz)

		memberAPI.GET("/quizzes/:quiz_id/review", handlers.Results.GetReview)
		memberAPI.GET("/quizzes/:quiz_id/stats", handlers.Results.GetQuizStats)
	}

	// ─── 3. WebSocket Group (Member WS Auth) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireMemberWSAuth(authService))
	{
		ws.GET("/member/quizzes/:quiz_id/stream", handlers.WS.QuizStream)
	}

	// ─── 4. Author Group (JWT) ─────────────────────────────────────────
	authorAPI := router.Group("/api/v1/author")
	authorAPI.Use(middleware.RequireAuthorJWT(authService))
	{
		authorAPI.POST("/quizzes", handlers.Quiz.CreateQuiz)
		authorAPI.GET("/quizzes", handlers.Quiz.ListQuizzes)
		authorAPI.GET("/quizzes/:quiz_id", handlers.Quiz.GetQuiz)
		authorAPI.PUT("/quizzes/:quiz_id", handlers.Quiz.UpdateQuiz)
		authorAPI.DELETE("/quizzes/:quiz_id", handlers.Quiz.DeleteQuiz)

		authorAPI.POST("/quizzes/:quiz_id/questions", handlers.Quiz.AddQuestion)
		authorAPI.PATCH("/quizzes/:quiz_id/questions/:question_id", handlers.Quiz.UpdateQuestion)
		authorAPI.DELETE("/quizzes/:quiz_id/questions/:question_id", handlers.Quiz.DeleteQuestion)
		authorAPI.POST("/quizzes/:quiz_id/questions/:question_id/move", handlers.Quiz.MoveQuestion)

		authorAPI.POST("/quizzes/:quiz_id/questions/:question_id/options", handlers.Quiz.AddOption)
		authorAPI.PUT("/quizzes/:quiz_id/questions/:question_id/options/:index", handlers.Quiz.UpdateOption)
		authorAPI.DELETE("/quizzes/:quiz_id/questions/:question_id/options/:index", handlers.Quiz.DeleteOption)

		authorAPI.GET("/quizzes/:quiz_id/validate", handlers.Quiz.ValidateQuiz)
		authorAPI.POST("/quizzes/:quiz_id/publish", handlers.Quiz.PublishQuiz)
		authorAPI.POST("/quizzes/:quiz_id/archive", handlers.Quiz.ArchiveQuiz)

		authorAPI.GET("/quizzes/:quiz_id/results", handlers.Results.ListQuizResults)
	}

	return router
}
