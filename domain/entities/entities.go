package entities

import (
	"errors"
	"fmt"
)

// SampleRate is the fixed rate, in Hz, of every audio buffer handled by the recognizer
const SampleRate = 16000

// TagProcessed marks a word span as produced by the remote recognition service
const TagProcessed = "processed"

// AudioBuffer holds channel-major float samples at SampleRate.
// Only the first channel is meaningful.
type AudioBuffer struct {
	Channels [][]float32
}

// NewMonoBuffer wraps a flat sample sequence
func NewMonoBuffer(samples []float32) AudioBuffer {
	return AudioBuffer{Channels: [][]float32{samples}}
}

// NewChannelBuffer wraps a (channels, samples) sequence
func NewChannelBuffer(channels [][]float32) AudioBuffer {
	return AudioBuffer{Channels: channels}
}

// WordSpan is a recognized word with its position in the source audio.
// Timestamps are in sample units (seconds * SampleRate).
type WordSpan struct {
	Word    string  `json:"word"`
	StartTS float64 `json:"start_ts"`
	EndTS   float64 `json:"end_ts"`
	Tag     string  `json:"tag"`
}

// TranscriptionResult is the normalized output of one recognition call
type TranscriptionResult struct {
	Text          string     `json:"text"`
	WordLocations []WordSpan `json:"word_locations"`
}

// NewTranscriptionResult returns an empty result whose word list is non-nil
func NewTranscriptionResult() TranscriptionResult {
	return TranscriptionResult{WordLocations: []WordSpan{}}
}

// Domain validation methods
func (w *WordSpan) Validate() error {
	if w.StartTS < 0 {
		return fmt.Errorf("start_ts must not be negative, got %f", w.StartTS)
	}
	if w.StartTS > w.EndTS {
		return fmt.Errorf("start_ts %f is after end_ts %f", w.StartTS, w.EndTS)
	}
	return nil
}

func (r *TranscriptionResult) Validate() error {
	if r.WordLocations == nil {
		return errors.New("word_locations must not be nil")
	}
	for i := range r.WordLocations {
		if err := r.WordLocations[i].Validate(); err != nil {
			return fmt.Errorf("word %d: %w", i, err)
		}
		if i > 0 && r.WordLocations[i].StartTS < r.WordLocations[i-1].StartTS {
			return fmt.Errorf("word %d starts before word %d", i, i-1)
		}
	}
	return nil
}
