package usecase

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/lafal/adapters/stt"
	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/domain/repositories"
	"github.com/satriahrh/lafal/internal/config"
)

type modelOptions struct {
	env         config.Environment
	override    config.Override
	whisperOpts []stt.Option
}

// ModelOption customizes how GetASRModel resolves and builds a recognizer
type ModelOption func(*modelOptions)

// WithEnvironment resolves credentials from src instead of the process environment
func WithEnvironment(src config.Environment) ModelOption {
	return func(o *modelOptions) { o.env = src }
}

// WithCredentials sets explicit credentials that take priority over the environment
func WithCredentials(override config.Override) ModelOption {
	return func(o *modelOptions) { o.override = override }
}

// WithWhisperOptions passes options through to the Whisper adapter
func WithWhisperOptions(opts ...stt.Option) ModelOption {
	return func(o *modelOptions) { o.whisperOpts = append(o.whisperOpts, opts...) }
}

// GetASRModel returns the remote Whisper API recognizer.
// language is part of the model contract but does not select anything:
// every language is served by the same remote model.
func GetASRModel(language string, logger *zap.Logger, opts ...ModelOption) (repositories.SpeechRecognizer, error) {
	var o modelOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.env == nil {
		o.env = config.OSEnvironment()
	}

	creds, err := config.Resolve(o.env, o.override)
	if err != nil {
		return nil, err
	}

	model, err := stt.NewWhisperAPIModel(creds, logger, o.whisperOpts...)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// GetTTSModel always fails: local text-to-speech is not supported
func GetTTSModel(language string) (repositories.TextToSpeech, error) {
	return nil, fmt.Errorf("%w: local TTS models are no longer supported, use an external TTS API such as AWS Polly, Google TTS or ElevenLabs", domain.ErrNotImplemented)
}

// GetTranslationModel always fails: local translation is not supported
func GetTranslationModel(language string) (repositories.Translator, error) {
	return nil, fmt.Errorf("%w: local translation models are no longer supported, use an external translation API such as Google Translate or DeepL", domain.ErrNotImplemented)
}
