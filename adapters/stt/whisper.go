package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/domain/entities"
	"github.com/satriahrh/lafal/domain/repositories"
	"github.com/satriahrh/lafal/internal/audio"
	"github.com/satriahrh/lafal/internal/config"
)

// WhisperAPIModel implements SpeechRecognizer by delegating to a hosted
// Whisper-compatible transcription API
type WhisperAPIModel struct {
	client     *WhisperClient
	sampleRate int
	tempDir    string
	logger     *zap.Logger

	mu     sync.RWMutex
	result entities.TranscriptionResult
}

// Ensure WhisperAPIModel implements the SpeechRecognizer interface
var _ repositories.SpeechRecognizer = (*WhisperAPIModel)(nil)

type whisperOptions struct {
	httpClient *http.Client
	tempDir    string
	model      string
}

// Option customizes a WhisperAPIModel
type Option func(*whisperOptions)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(o *whisperOptions) { o.httpClient = client }
}

// WithTempDir sets where the temporary WAV files are written
func WithTempDir(dir string) Option {
	return func(o *whisperOptions) { o.tempDir = dir }
}

// WithModel overrides the transcription model identifier
func WithModel(model string) Option {
	return func(o *whisperOptions) { o.model = model }
}

// NewWhisperAPIModel creates the adapter. It fails with domain.ErrConfiguration
// when creds carry no API key.
func NewWhisperAPIModel(creds config.Credentials, logger *zap.Logger, opts ...Option) (*WhisperAPIModel, error) {
	if creds.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", domain.ErrConfiguration)
	}
	if creds.APIBase == "" {
		creds.APIBase = config.DefaultAPIBase
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var o whisperOptions
	for _, opt := range opts {
		opt(&o)
	}

	client := NewWhisperClient(creds, o.model, o.httpClient, logger)
	logger.Info("Whisper API model ready",
		zap.String("endpoint", client.Endpoint()),
		zap.String("model", client.Model()),
		zap.String("apiKey", creds.MaskedKey()))

	return &WhisperAPIModel{
		client:     client,
		sampleRate: entities.SampleRate,
		tempDir:    o.tempDir,
		logger:     logger,
		result:     entities.NewTranscriptionResult(),
	}, nil
}

// ProcessAudio transcribes buf and replaces the cached result on success.
// A failed call leaves the previous result in place. The temporary WAV file
// is removed on every path.
func (m *WhisperAPIModel) ProcessAudio(ctx context.Context, buf entities.AudioBuffer) (err error) {
	samples, err := audio.Normalize(buf)
	if err != nil {
		return err
	}

	artifact, err := audio.EncodeWAV(m.tempDir, samples, m.sampleRate)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := artifact.Release(); relErr != nil {
			m.logger.Warn("Failed to remove audio artifact",
				zap.String("path", artifact.Path()),
				zap.Error(relErr))
			err = errors.Join(err, relErr)
		}
	}()

	m.logger.Info("Processing speech-to-text",
		zap.Int("samples", len(samples)),
		zap.Int("sampleRate", m.sampleRate))

	raw, err := m.client.Transcribe(ctx, artifact)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	result, err := NormalizeResponse(raw, m.sampleRate)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", &domain.ServiceError{
			StatusCode: http.StatusOK,
			Body:       string(raw),
			Err:        err,
		})
	}

	m.mu.Lock()
	m.result = result
	m.mu.Unlock()

	m.logger.Info("Transcription completed",
		zap.String("text", result.Text),
		zap.Int("words", len(result.WordLocations)))

	return nil
}

// GetTranscript returns the text of the most recent successful call
func (m *WhisperAPIModel) GetTranscript() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result.Text
}

// GetWordLocations returns a copy of the word spans of the most recent successful call
func (m *WhisperAPIModel) GetWordLocations() []entities.WordSpan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	words := make([]entities.WordSpan, len(m.result.WordLocations))
	copy(words, m.result.WordLocations)
	return words
}
