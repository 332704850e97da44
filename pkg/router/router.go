package router

import (
	"context"
	"net/http"
	"time"

	"character-chat/backend/internal/api"
	"character-chat/backend/internal/llm"
	"character-chat/backend/internal/session"
	"character-chat/backend/pkg/di"
	"character-chat/backend/pkg/errors"
	"character-chat/backend/pkg/health"
	"character-chat/backend/pkg/logger"
	"character-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Health    *health.Checker
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger first so every request carries a request-scoped logger.
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	limiterOpts := middleware.DefaultRateLimiterOptions()
	limiterOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	limiterOpts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, limiterOpts)
	engine.Use(rateLimiter.Middleware())

	checker := health.NewChecker(container.Logger, 30*time.Second)
	if container.DB != nil {
		if sqlDB, err := container.DB.DB(); err == nil {
			checker.RegisterDatabaseCheck(sqlDB.Ping)
		}
	}
	if pinger, ok := container.SessionBackend.(interface {
		Ping(ctx context.Context) error
	}); ok {
		checker.RegisterSessionStoreCheck(pinger.Ping)
	}
	if pinger, ok := container.Completions.(llm.Pinger); ok {
		checker.RegisterCompletionCheck(pinger.Ping)
	}
	checker.Start()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Health:    checker,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes(metricsHandler http.Handler) {
	cfg := r.Container.Config

	r.Engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))

	jwtAuth := middleware.JWTAuth(r.Container.JWTService, r.Logger)
	staffOnly := middleware.Require(middleware.IsAuthenticated, middleware.IsStaff)

	chatHandler := api.NewChatHandler(
		r.Container.Characters,
		r.Container.Conversations,
		r.Container.Guard,
		r.Container.Chat,
		r.Logger,
	)
	adminHandler := api.NewAdminCharacterHandler(r.Container.Characters, cfg, r.Logger)
	authHandler := api.NewAuthHandler(r.Container.Users, r.Logger)

	// The anonymous chat surface carries the session cookie.
	sessionScoped := session.Middleware(
		r.Container.SessionBackend,
		cfg.Session.CookieName,
		int(cfg.Session.TTL.Seconds()),
		cfg.Server.Env == "production",
	)

	r.Engine.GET("/", sessionScoped, chatHandler.ListCharacters)

	chatRoutes := r.Engine.Group("/chat")
	chatRoutes.Use(sessionScoped)
	{
		chatRoutes.GET("/", chatHandler.Open)
		chatRoutes.POST("/", chatHandler.LegacyTurn)
	}

	apiRoutes := r.Engine.Group("/api")
	apiRoutes.Use(sessionScoped)
	{
		apiRoutes.POST("/chat/", chatHandler.APITurn)
	}

	authRoutes := r.Engine.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", jwtAuth, authHandler.Me)
	}

	adminRoutes := r.Engine.Group("/admin/characters")
	adminRoutes.Use(jwtAuth, staffOnly)
	{
		adminRoutes.GET("/", adminHandler.List)
		adminRoutes.POST("/add/", adminHandler.Create)
		adminRoutes.GET("/:id/", adminHandler.Get)
		adminRoutes.POST("/:id/edit/", adminHandler.Edit)
		adminRoutes.PUT("/:id/", adminHandler.Edit)
		adminRoutes.DELETE("/:id/", adminHandler.Delete)
	}

	// Uploaded avatars are served as static files.
	r.Engine.Static(cfg.Uploads.PublicPath, cfg.Uploads.Dir)

	r.Engine.GET("/health", gin.WrapF(r.Health.HTTPHandler()))
	if metricsHandler != nil {
		r.Engine.GET("/metrics", gin.WrapH(metricsHandler))
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
