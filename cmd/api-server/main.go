package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"cinerate/database"
	"cinerate/internal/cache"
	"cinerate/internal/config"
	httpapi "cinerate/internal/microservices/http-api"
	"cinerate/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	appLogger := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(appLogger)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("could not open record store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis is optional; without it listByMedia reads the store directly
	var ratingCache *cache.RatingCache
	rdb, err := database.OpenRedis(ctx, cfg.RedisURL, cfg.RedisPassword, appLogger)
	switch {
	case errors.Is(err, database.ErrRedisDisabled):
		appLogger.Info("redis not configured, rating cache disabled")
	case err != nil:
		appLogger.Warn("redis unavailable, rating cache disabled", slog.String("error", err.Error()))
	case cfg.CacheTTL == 0:
		appLogger.Info("CACHE_TTL is 0, rating cache disabled")
		rdb.Close()
	default:
		ratingCache = cache.NewRatingCache(rdb, cfg.CacheTTLDuration())
		defer rdb.Close()
	}

	router := httpapi.NewRouter(cfg, store, ratingCache, appLogger)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           corsHandler(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		appLogger.Info("api server listening", slog.String("addr", server.Addr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
	if err := closeStore(shutdownCtx); err != nil {
		appLogger.Error("closing record store failed", slog.String("error", err.Error()))
	}
	appLogger.Info("server stopped")
}
