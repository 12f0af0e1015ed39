package stt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/satriahrh/lafal/domain/entities"
)

// whisperResponse is the subset of the verbose_json body that is read
type whisperResponse struct {
	Text  string        `json:"text"`
	Words []whisperWord `json:"words"`
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NormalizeResponse maps a verbose_json body onto a TranscriptionResult.
// Absent fields default to zero values; word order is preserved.
func NormalizeResponse(raw []byte, sampleRate int) (entities.TranscriptionResult, error) {
	var resp whisperResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return entities.TranscriptionResult{}, fmt.Errorf("decode response: %w", err)
	}

	result := entities.NewTranscriptionResult()
	result.Text = resp.Text
	if len(resp.Words) > 0 {
		result.WordLocations = make([]entities.WordSpan, len(resp.Words))
		for i, w := range resp.Words {
			result.WordLocations[i] = entities.WordSpan{
				Word:    strings.TrimSpace(w.Word),
				StartTS: w.Start * float64(sampleRate),
				EndTS:   w.End * float64(sampleRate),
				Tag:     entities.TagProcessed,
			}
		}
	}

	return result, nil
}
