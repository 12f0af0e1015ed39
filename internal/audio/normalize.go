package audio

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/domain/entities"
)

// Normalize reduces a buffer to its first channel.
// The remaining channels are discarded, never mixed down.
func Normalize(buf entities.AudioBuffer) ([]float32, error) {
	if len(buf.Channels) == 0 {
		return nil, fmt.Errorf("%w: audio buffer has no channels", domain.ErrEncoding)
	}
	first := buf.Channels[0]
	if len(first) == 0 {
		return nil, fmt.Errorf("%w: audio buffer has no samples", domain.ErrEncoding)
	}

	mono := make([]float32, len(first))
	copy(mono, first)
	return mono, nil
}

// DecodeSamplesJSON parses either a flat array of numbers or an array of
// channel arrays. Any other shape, and null in place of a sample or channel,
// is rejected.
func DecodeSamplesJSON(raw []byte) (entities.AudioBuffer, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return entities.AudioBuffer{}, fmt.Errorf("%w: samples must be a JSON array", domain.ErrEncoding)
	}

	var flat []*float32
	if err := json.Unmarshal(trimmed, &flat); err == nil {
		samples, err := derefSamples(flat)
		if err != nil {
			return entities.AudioBuffer{}, err
		}
		return entities.NewMonoBuffer(samples), nil
	}

	var nested [][]*float32
	if err := json.Unmarshal(trimmed, &nested); err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("%w: samples must have shape (N,) or (channels, N): %v", domain.ErrEncoding, err)
	}
	channels := make([][]float32, len(nested))
	for c, channel := range nested {
		if channel == nil {
			return entities.AudioBuffer{}, fmt.Errorf("%w: channel %d is null", domain.ErrEncoding, c)
		}
		samples, err := derefSamples(channel)
		if err != nil {
			return entities.AudioBuffer{}, fmt.Errorf("channel %d: %w", c, err)
		}
		channels[c] = samples
	}
	return entities.NewChannelBuffer(channels), nil
}

func derefSamples(values []*float32) ([]float32, error) {
	samples := make([]float32, len(values))
	for i, v := range values {
		if v == nil {
			return nil, fmt.Errorf("%w: sample %d is null", domain.ErrEncoding, i)
		}
		samples[i] = *v
	}
	return samples, nil
}
