package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/handler"
	"github.com/shikshaprep/mocktest-backend/internal/middleware"
	"github.com/shikshaprep/mocktest-backend/internal/response"
	"github.com/shikshaprep/mocktest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Upload *handler.UploadHandler
	Test   *handler.TestHandler
	Admin  *handler.AdminHandler
	WS     *handler.WSHandler
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

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP) and a
	// tighter one for uploads, which fan out into AI calls.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	uploadLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Tests Group (JWT, Owner Scoped) ────────────────────────────
	testsAPI := router.Group("/api/v1/tests")
	testsAPI.Use(middleware.RequireJWT(authService))
	{
		testsAPI.POST("/upload", uploadLimiter.Middleware(), handlers.Upload.Upload)
		testsAPI.GET("", handlers.Test.List)
		testsAPI.GET("/:id", handlers.Test.Get)
		testsAPI.POST("/:id/submit", handlers.Test.Submit)
		testsAPI.DELETE("/:id", handlers.Test.Delete)
		testsAPI.GET("/:id/download", handlers.Test.Download)
	}

	// ─── 3. WebSocket Group (WS Auth via Query Token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/tests/:id/status", handlers.WS.StatusStream)
	}

	// ─── 4. Admin Group (JWT + Role Check) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireJWT(authService), middleware.RequireAdmin())
	{
		adminAPI.GET("/users", handlers.Admin.ListUsers)
		adminAPI.GET("/stats", handlers.Admin.Stats)
	}

	return router
}
