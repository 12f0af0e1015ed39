package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lafal/adapters/stt"
	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/domain/entities"
	"github.com/satriahrh/lafal/domain/repositories"
	"github.com/satriahrh/lafal/internal/audio"
	"github.com/satriahrh/lafal/internal/config"
	"github.com/satriahrh/lafal/usecase"
)

func main() {
	file := flag.String("file", "", "16 kHz WAV file to transcribe (defaults to one second of silence)")
	language := flag.String("language", "en", "language passed to the model factory")
	dryRun := flag.Bool("dry-run", false, "use the offline mock recognizer instead of the paid API")
	flag.Parse()

	if loaded, err := config.LoadDotEnv(""); err != nil {
		fmt.Printf("⚠️  Could not load .env: %v\n", err)
	} else if loaded {
		fmt.Println("✅ Loaded .env file")
	}

	// Create logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !*dryRun && !checkEnvironment() {
		os.Exit(1)
	}

	buf, err := loadAudio(*file)
	if err != nil {
		logger.Error("Failed to load audio", zap.Error(err))
		os.Exit(1)
	}

	var model repositories.SpeechRecognizer
	if *dryRun {
		model = stt.NewMockSpeechRecognizer(logger)
	} else if model, err = usecase.GetASRModel(*language, logger); err != nil {
		logger.Error("Failed to create ASR model", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *dryRun {
		fmt.Println("Dry run: transcribing with the offline mock recognizer")
	} else {
		fmt.Println("Sending audio to the recognition service (this costs ~$0.0001)...")
	}
	if err := model.ProcessAudio(ctx, buf); err != nil {
		fmt.Printf("\n❌ Transcription failed: %v\n", err)
		printHints(err)
		os.Exit(1)
	}

	transcript := model.GetTranscript()
	fmt.Printf("✅ Transcript: %q\n", transcript)
	if *file == "" && transcript != "" {
		fmt.Println("⚠️  Expected an empty transcript for silence")
	}

	for _, span := range model.GetWordLocations() {
		fmt.Printf("  %-20s %8.0f - %8.0f  (%s)\n", span.Word, span.StartTS, span.EndTS, span.Tag)
	}
}

// checkEnvironment prints which credentials are visible to the process
func checkEnvironment() bool {
	fmt.Println("Environment Check")

	creds, err := config.Resolve(config.OSEnvironment(), config.Override{})
	if err != nil {
		fmt.Println("❌ WHISPER_API_KEY is not set")
		fmt.Println("Add it to your .env file:")
		fmt.Println("  WHISPER_API_KEY=sk-proj-xxxxxxxxxxxxxxxx")
		return false
	}

	fmt.Printf("✅ API key: %s\n", creds.MaskedKey())
	fmt.Printf("   API base: %s\n", creds.APIBase)
	return true
}

func loadAudio(path string) (entities.AudioBuffer, error) {
	if path == "" {
		return entities.NewMonoBuffer(make([]float32, entities.SampleRate)), nil
	}

	buf, rate, err := audio.ReadWAVFile(path)
	if err != nil {
		return entities.AudioBuffer{}, err
	}
	if rate != entities.SampleRate {
		return entities.AudioBuffer{}, fmt.Errorf("%w: %s is %d Hz, expected %d Hz", domain.ErrEncoding, path, rate, entities.SampleRate)
	}
	return buf, nil
}

func printHints(err error) {
	var svcErr *domain.ServiceError
	switch {
	case errors.As(err, &svcErr):
		fmt.Printf("The service answered with HTTP %d. Check that the API key is valid and the account has credits.\n", svcErr.StatusCode)
	case errors.Is(err, domain.ErrTransport):
		fmt.Println("The service could not be reached. Check the network connection and OPENAI_API_BASE.")
	}
}
