package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satriahrh/lafal/domain/repositories"
	"github.com/satriahrh/lafal/internal/api"
	"github.com/satriahrh/lafal/internal/auth"
	"github.com/satriahrh/lafal/internal/config"
	"github.com/satriahrh/lafal/usecase"
)

func main() {
	loaded, dotEnvErr := config.LoadDotEnv("")

	cfg, cfgErr := config.LoadServer(config.OSEnvironment())

	// Initialize logger
	zapCfg := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if dotEnvErr != nil {
		logger.Warn("Failed to load .env file", zap.Error(dotEnvErr))
	} else if loaded {
		logger.Info("Loaded environment from .env")
	}
	if cfgErr != nil {
		logger.Fatal("Invalid server configuration", zap.Error(cfgErr))
	}

	// Credentials are resolved once so a misconfigured deployment fails at startup
	creds, err := config.Resolve(config.OSEnvironment(), config.Override{})
	if err != nil {
		logger.Fatal("Speech recognition is not configured", zap.Error(err))
	}
	logger.Info("Using recognition service",
		zap.String("apiBase", creds.APIBase),
		zap.String("apiKey", creds.MaskedKey()))

	// Initialize usecase services
	transcriptionService := usecase.NewTranscriptionService(func(language string) (repositories.SpeechRecognizer, error) {
		return usecase.GetASRModel(language, logger,
			usecase.WithCredentials(config.Override{APIKey: creds.APIKey, APIBase: creds.APIBase}))
	}, logger)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("32M"))

	// Initialize API routes
	var guards []echo.MiddlewareFunc
	if cfg.AuthSecret != "" {
		guards = append(guards, auth.Middleware([]byte(cfg.AuthSecret), logger))
	} else {
		logger.Warn("AUTH_SECRET is not set, API is unauthenticated")
	}
	api.InitRoutes(e, transcriptionService, cfg.Language, logger, guards...)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("language", cfg.Language))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
