package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/middleware"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/router"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.InitLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Formal-wear Orders API server...", zap.String("env", cfg.GoEnv))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := models.SeedRefusalReasons(db); err != nil {
		logger.Fatal("Failed to seed refusal reasons", zap.Error(err))
	}
	logger.Info("Database migration completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initServices(ctx, cfg); err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, middleware.EnsureValidToken(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

// initServices sets up photo storage and the postal code lookup
func initServices(ctx context.Context, cfg *config.Config) error {
	logger := config.GetLogger()

	if cfg.UsesS3() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			return err
		}
		services.InitImageService(s3Service)
		logger.Info("Photos are stored on S3", zap.String("bucket", cfg.AWSS3Bucket))
	} else {
		services.InitLocalImageService(cfg.UploadDir)
		logger.Info("Photos are stored on local disk", zap.String("dir", cfg.UploadDir))
	}

	services.InitPostalCodeService(cfg.PostalCodeAPIURL)
	return nil
}

// setupRouter builds the API router with auth in front of the protected routes
func setupRouter(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	return router.New(cfg, auth)
}
