package api

import (
	"encoding/json"

	"github.com/satriahrh/lafal/domain/entities"
)

// TranscriptionRequest represents the request payload for a transcription.
// Samples is either a flat array of floats or an array of channel arrays.
type TranscriptionRequest struct {
	Samples  json.RawMessage `json:"samples"`
	Language string          `json:"language,omitempty"`
}

// TranscriptionResponse represents the response payload for a transcription
type TranscriptionResponse struct {
	Text          string              `json:"text"`
	WordLocations []entities.WordSpan `json:"word_locations"`
}

// LanguageRequest represents the payload of the TTS and translation endpoints
type LanguageRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error          string `json:"error"`
	Message        string `json:"message,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}
