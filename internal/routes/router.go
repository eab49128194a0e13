package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trosc-backend/internal/config"
	"trosc-backend/internal/database"
	"trosc-backend/internal/email"
	"trosc-backend/internal/logger"
	"trosc-backend/internal/middleware"
	"trosc-backend/internal/user/handler"
	"trosc-backend/internal/user/repository"
	"trosc-backend/internal/user/service"
)

func SetupRoutes(cfg *config.Config, db *database.Database) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware order: recovery, request ID, logging, security headers,
	// CORS, request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userRepository := repository.NewRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := userRepository.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	mailer := email.NewMailer(&cfg.SMTP)
	userService := service.NewService(userRepository, mailer, cfg)
	userHandler := handler.NewHandler(userService, cfg)

	v1 := router.Group("/api/v1")
	{
		// Credential endpoints get a much tighter per-IP budget than the rest
		// of the API.
		authRoutes := v1.Group("")
		authRoutes.Use(middleware.RateLimitMiddleware(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst))
		userHandler.RegisterRoutes(authRoutes)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg, userRepository))
		{
			userHandler.RegisterProfileRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				userHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
