package repositories

import (
	"context"

	"github.com/satriahrh/lafal/domain/entities"
)

// SpeechRecognizer abstracts speech recognition models used by pronunciation scoring
type SpeechRecognizer interface {
	// ProcessAudio recognizes the buffer and replaces the cached result on success
	ProcessAudio(ctx context.Context, audio entities.AudioBuffer) error
	// GetTranscript returns the text of the most recent successful call
	GetTranscript() string
	// GetWordLocations returns the word spans of the most recent successful call
	GetWordLocations() []entities.WordSpan
}
