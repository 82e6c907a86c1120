package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aishow/backend/docs"
	"github.com/aishow/backend/internal/config"
	"github.com/aishow/backend/internal/handlers"
	"github.com/aishow/backend/internal/logger"
	"github.com/aishow/backend/internal/middleware"
	"github.com/aishow/backend/internal/repositories"
	"github.com/aishow/backend/internal/services"
	"github.com/aishow/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const maxRequestSize = 50 * 1024 * 1024 // 50MB for file uploads

// @title AI Show Catalog API
// @version 1.0
// @description API for the AI show content catalog: works metadata and uploaded assets

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
// @description Shared admin secret for the /api/admin routes
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting AI Show catalog service")

	// Initialize storage and create all upload directories eagerly;
	// failures are logged and surface again on first write
	uploadStorage := storage.NewUploadStorage(cfg.Catalog.PublicDir, logger.Logger)
	uploadStorage.EnsureDirs()

	// Initialize repository
	workRepo := repositories.NewWorkRepository(cfg.Catalog.DataFile, logger.Logger)

	// Initialize services
	workService := services.NewWorkService(workRepo, uploadStorage, logger.Logger)

	// Initialize middleware
	adminMw := middleware.AdminTokenMiddleware(cfg.AdminToken)

	// Initialize handlers
	worksHandler := handlers.NewWorksHandler(workService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(workService, logger.Logger, adminMw)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(maxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("%s/swagger/doc.json", cfg.Server.BaseURL)),
	))

	// Static serving of uploaded assets
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(cfg.Catalog.PublicDir))))

	// API routes
	r.Route("/api", func(r chi.Router) {
		worksHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second, // Longer timeout for file uploads
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
