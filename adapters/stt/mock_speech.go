package stt

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/lafal/domain/entities"
	"github.com/satriahrh/lafal/domain/repositories"
	"github.com/satriahrh/lafal/internal/audio"
)

// MockSpeechRecognizer is a placeholder implementation for speech recognition.
// It never touches the network.
type MockSpeechRecognizer struct {
	logger *zap.Logger

	mu     sync.RWMutex
	result entities.TranscriptionResult
}

// NewMockSpeechRecognizer creates a new mock speech recognizer
func NewMockSpeechRecognizer(logger *zap.Logger) repositories.SpeechRecognizer {
	return &MockSpeechRecognizer{
		logger: logger,
		result: entities.NewTranscriptionResult(),
	}
}

// ProcessAudio implements repositories.SpeechRecognizer
func (s *MockSpeechRecognizer) ProcessAudio(ctx context.Context, buf entities.AudioBuffer) error {
	samples, err := audio.Normalize(buf)
	if err != nil {
		return err
	}

	s.logger.Info("Processing mock speech-to-text", zap.Int("samples", len(samples)))

	// Mock transcription: silence yields nothing, otherwise one word per second of audio
	result := entities.NewTranscriptionResult()
	if !isSilent(samples) {
		seconds := (len(samples) + entities.SampleRate - 1) / entities.SampleRate
		words := make([]string, seconds)
		for i := range words {
			words[i] = "hello"
			end := float64((i + 1) * entities.SampleRate)
			if end > float64(len(samples)) {
				end = float64(len(samples))
			}
			result.WordLocations = append(result.WordLocations, entities.WordSpan{
				Word:    words[i],
				StartTS: float64(i * entities.SampleRate),
				EndTS:   end,
				Tag:     entities.TagProcessed,
			})
		}
		result.Text = " " + strings.Join(words, " ")
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
	return nil
}

// GetTranscript implements repositories.SpeechRecognizer
func (s *MockSpeechRecognizer) GetTranscript() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result.Text
}

// GetWordLocations implements repositories.SpeechRecognizer
func (s *MockSpeechRecognizer) GetWordLocations() []entities.WordSpan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	words := make([]entities.WordSpan, len(s.result.WordLocations))
	copy(words, s.result.WordLocations)
	return words
}

func isSilent(samples []float32) bool {
	for _, s := range samples {
		if s != 0 {
			return false
		}
	}
	return true
}
