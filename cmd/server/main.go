package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"picturebook-server/internal/catalog"
	"picturebook-server/internal/config"
	"picturebook-server/internal/generation"
	"picturebook-server/internal/handler"
	sharedLogger "picturebook-server/shared/logger"
	sharedMiddleware "picturebook-server/shared/middleware"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Service:  "picturebook-server",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Configuration loaded", cfg.LogFields()...)
	if !cfg.HasCredential() {
		zap.L().Warn("GOOGLE_API_KEY is not set, every generate request will fail until it is configured")
	}

	// --- Dependency Injection ---
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		zap.L().Fatal("Failed to load catalog", zap.Error(err))
	}

	aiClient, err := generation.NewAIClient(cfg, logger)
	if err != nil {
		zap.L().Fatal("Failed to create AI client", zap.Error(err))
	}

	var illustrator generation.Illustrator
	if cfg.ImageAPIURL != "" {
		illustrator = generation.NewHTTPIllustrator(cfg.ImageAPIURL, cfg.ImageAPIKey, cfg.ImageAPITimeout, logger)
		zap.L().Info("Illustrator enabled", zap.String("url", cfg.ImageAPIURL))
	}

	service := generation.NewService(aiClient, illustrator, cat, generation.OptionsFromConfig(cfg), logger)
	apiHandler := handler.NewAPIHandler(service, cat, logger)
	limiter := sharedMiddleware.NewRateLimiter(cfg.GenerateRateLimit, cfg.GenerateBurst, logger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	router := newRouter(cfg, apiHandler, limiter, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}
