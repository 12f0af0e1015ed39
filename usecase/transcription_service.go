package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/lafal/domain/entities"
	"github.com/satriahrh/lafal/domain/repositories"
)

// RecognizerFactory builds a fresh recognizer for one transcription
type RecognizerFactory func(language string) (repositories.SpeechRecognizer, error)

// TranscriptionService runs one recognition per request on its own recognizer,
// so concurrent requests never share adapter state
type TranscriptionService struct {
	newRecognizer RecognizerFactory
	logger        *zap.Logger
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(factory RecognizerFactory, logger *zap.Logger) *TranscriptionService {
	return &TranscriptionService{
		newRecognizer: factory,
		logger:        logger,
	}
}

// Transcribe recognizes buf and returns the transcript with its word spans
func (s *TranscriptionService) Transcribe(ctx context.Context, language string, buf entities.AudioBuffer) (entities.TranscriptionResult, error) {
	recognizer, err := s.newRecognizer(language)
	if err != nil {
		return entities.TranscriptionResult{}, fmt.Errorf("create recognizer: %w", err)
	}

	if err := recognizer.ProcessAudio(ctx, buf); err != nil {
		return entities.TranscriptionResult{}, err
	}

	result := entities.TranscriptionResult{
		Text:          recognizer.GetTranscript(),
		WordLocations: recognizer.GetWordLocations(),
	}
	if result.WordLocations == nil {
		result.WordLocations = []entities.WordSpan{}
	}

	s.logger.Info("Transcription served",
		zap.String("language", language),
		zap.Int("words", len(result.WordLocations)))

	return result, nil
}
