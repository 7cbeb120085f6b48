package httpapi

import (
	"log/slog"

	"cinerate/internal/cache"
	"cinerate/internal/config"
	"cinerate/internal/microservices/http-api/handler"
	"cinerate/internal/microservices/http-api/middleware"
	"cinerate/internal/microservices/http-api/repository"
	"cinerate/internal/microservices/http-api/service"
	"cinerate/internal/observability/metrics"
	"cinerate/internal/reliability/retry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires services and handlers on top of store. ratingCache may be
// nil, in which case listByMedia always reads the store.
func NewRouter(cfg *config.Config, store repository.Store, ratingCache *cache.RatingCache, logger *slog.Logger) *gin.Engine {
	ids := service.NewIDAllocator(logger)
	authService := service.NewAuthService(store, ids, cfg, logger)
	ratingService := service.NewRatingService(store, ids, ratingCache, logger)
	cascade := service.NewCascadeCoordinator(store, ratingCache, retry.DefaultConfig(), logger)
	adminService := service.NewAdminService(store, ratingService, cascade)

	authHandler := handler.NewAuthHandler(authService, cfg.JWTExpiry, logger)
	ratingHandler := handler.NewRatingHandler(ratingService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	healthHandler := handler.NewHealthHandler(store, ratingCache)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	if cfg.PrometheusEnabled {
		r.Use(metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", healthHandler.Check)

	limiter := middleware.NewClientRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	r.POST("/signup", limiter.Middleware(), authHandler.Signup)
	r.POST("/signin", limiter.Middleware(), authHandler.Signin)

	optionalAuth := middleware.OptionalAuth(authService)
	r.GET("/api/authenticated", optionalAuth, authHandler.Authenticated)
	r.POST("/ratings", optionalAuth, ratingHandler.Submit)
	// older clients still post ratings here
	r.POST("/showmore", optionalAuth, ratingHandler.Submit)
	r.GET("/ratings", ratingHandler.List)

	admin := r.Group("/admin", middleware.RequireAdminKey(cfg.AdminAPIKey))
	adminHandler.RegisterRoutes(admin)

	return r
}
