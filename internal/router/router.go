package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/leavedesk/leavegate-backend/internal/config"
	"github.com/leavedesk/leavegate-backend/internal/handler"
	"github.com/leavedesk/leavegate-backend/internal/middleware"
	"github.com/leavedesk/leavegate-backend/internal/response"
	"github.com/leavedesk/leavegate-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Leave    *handler.LeaveHandler
	Test     *handler.TestHandler
	Question *handler.QuestionHandler
	Setting  *handler.SettingHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
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

	// Request ID first so every response carries metadata.
	router.Use(response.RequestIDMiddleware())

	// Compress responses for clients that accept brotli.
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
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. Employee Group (JWT) ───────────────────────────────────────
	employeeAPI := router.Group("/api/v1/employee")
	employeeAPI.Use(middleware.RequireEmployeeJWT(authService))
	{
		employeeAPI.GET("/subjects", handlers.Question.Subjects)

		employeeAPI.POST("/leaves", handlers.Leave.Apply)
		employeeAPI.GET("/leaves", handlers.Leave.ListMine)
		employeeAPI.GET("/leaves/:leave_id", handlers.Leave.GetMine)

		employeeAPI.POST("/sessions/:session_id/start", handlers.Test.Start)
		employeeAPI.GET("/sessions/:session_id/state", handlers.Test.State)
		employeeAPI.GET("/sessions/:session_id/paper", handlers.Test.Paper)
		employeeAPI.POST("/sessions/:session_id/answers", handlers.Test.SubmitAnswer)
		employeeAPI.POST("/sessions/:session_id/violations", handlers.Test.ReportViolation)
		employeeAPI.POST("/sessions/:session_id/submit", handlers.Test.Submit)
		employeeAPI.GET("/sessions/:session_id/result", handlers.Test.Result)
	}

	// ─── 3. WebSocket Group (Employee WS Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireEmployeeWSAuth(authService))
	{
		ws.GET("/employee/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/leaves", handlers.Leave.ListAll)
		adminAPI.PUT("/leaves/:leave_id/decision", handlers.Leave.Decide)
		adminAPI.GET("/leaves/:leave_id/session", handlers.Leave.SessionDetail)

		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.POST("/questions", handlers.Question.Add)
		adminAPI.DELETE("/questions/:question_id", handlers.Question.Delete)

		adminAPI.GET("/settings/policy", handlers.Setting.GetPolicy)
		adminAPI.PUT("/settings/policy", handlers.Setting.UpdatePolicy)
	}

	return router
}
