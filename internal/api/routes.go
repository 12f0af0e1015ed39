package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/internal/audio"
	"github.com/satriahrh/lafal/usecase"
)

// InitRoutes initializes all API routes. The middlewares guard the /api/v1 group only.
func InitRoutes(e *echo.Echo, service *usecase.TranscriptionService, defaultLanguage string, logger *zap.Logger, middlewares ...echo.MiddlewareFunc) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "asr-adapter",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1", middlewares...)

	v1.POST("/transcriptions", func(c echo.Context) error {
		return transcribe(c, service, defaultLanguage, logger)
	})

	v1.POST("/tts", func(c echo.Context) error {
		return unsupported(c, logger, func(language string) error {
			_, err := usecase.GetTTSModel(language)
			return err
		})
	})
	v1.POST("/translations", func(c echo.Context) error {
		return unsupported(c, logger, func(language string) error {
			_, err := usecase.GetTranslationModel(language)
			return err
		})
	})
}

func transcribe(c echo.Context, service *usecase.TranscriptionService, defaultLanguage string, logger *zap.Logger) error {
	var req TranscriptionRequest

	// Bind and validate request
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind transcription request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	buf, err := audio.DecodeSamplesJSON(req.Samples)
	if err != nil {
		return writeError(c, err, logger)
	}

	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	result, err := service.Transcribe(c.Request().Context(), language, buf)
	if err != nil {
		return writeError(c, err, logger)
	}

	return c.JSON(http.StatusOK, TranscriptionResponse{
		Text:          result.Text,
		WordLocations: result.WordLocations,
	})
}

func unsupported(c echo.Context, logger *zap.Logger, factory func(language string) error) error {
	var req LanguageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	return writeError(c, factory(req.Language), logger)
}

// writeError maps an error kind onto an HTTP status
func writeError(c echo.Context, err error, logger *zap.Logger) error {
	var svcErr *domain.ServiceError

	switch {
	case errors.Is(err, domain.ErrEncoding):
		logger.Warn("Rejected audio buffer", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrConfiguration):
		logger.Error("Recognizer is not configured", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "configuration_error",
			Message: "Speech recognition is not configured",
		})
	case errors.Is(err, domain.ErrTransport):
		logger.Error("Recognition service unreachable", zap.Error(err))
		return c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error:   "transport_error",
			Message: "Recognition service could not be reached",
		})
	case errors.As(err, &svcErr):
		logger.Error("Recognition service failed",
			zap.Int("upstreamStatus", svcErr.StatusCode),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:          "service_error",
			Message:        "Recognition service returned an error",
			UpstreamStatus: svcErr.StatusCode,
		})
	case errors.Is(err, domain.ErrNotImplemented):
		return c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error:   "not_implemented",
			Message: err.Error(),
		})
	default:
		logger.Error("Transcription failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Transcription failed",
		})
	}
}
