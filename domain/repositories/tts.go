package repositories

import "context"

// TextToSpeech is kept for model-contract compatibility; no implementation is provided
type TextToSpeech interface {
	ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error)
}

// Translator is kept for model-contract compatibility; no implementation is provided
type Translator interface {
	Translate(ctx context.Context, text string, targetLanguage string) (string, error)
}
