package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/satriahrh/lafal/domain"
)

// DefaultAPIBase is used when neither an override nor OPENAI_API_BASE is set
const DefaultAPIBase = "https://api.openai.com/v1"

// Environment is an abstract source of environment variables
type Environment map[string]string

// OSEnvironment snapshots the current process environment
func OSEnvironment() Environment {
	environ := os.Environ()
	src := make(Environment, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			src[key] = value
		}
	}
	return src
}

// Credentials identify the caller to the remote recognition service
type Credentials struct {
	APIKey  string
	APIBase string
}

// MaskedKey returns a preview of the API key that is safe to print
func (c Credentials) MaskedKey() string {
	if len(c.APIKey) <= 14 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return c.APIKey[:10] + "..." + c.APIKey[len(c.APIKey)-4:]
}

// Override holds explicit values that take priority over the environment
type Override struct {
	APIKey  string
	APIBase string
}

type credentialEnv struct {
	WhisperAPIKey string `env:"WHISPER_API_KEY"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	APIBase       string `env:"OPENAI_API_BASE" envDefault:"https://api.openai.com/v1"`
}

// Resolve builds Credentials from an override and an environment source.
// Key priority: override, WHISPER_API_KEY, OPENAI_API_KEY.
func Resolve(src Environment, override Override) (Credentials, error) {
	if src == nil {
		src = Environment{}
	}
	var parsed credentialEnv
	if err := env.ParseWithOptions(&parsed, env.Options{Environment: src}); err != nil {
		return Credentials{}, fmt.Errorf("%w: parse environment: %v", domain.ErrConfiguration, err)
	}

	apiKey := firstNonBlank(override.APIKey, parsed.WhisperAPIKey, parsed.OpenAIAPIKey)
	if apiKey == "" {
		return Credentials{}, fmt.Errorf("%w: WHISPER_API_KEY or OPENAI_API_KEY environment variable must be set", domain.ErrConfiguration)
	}

	apiBase := strings.TrimRight(firstNonBlank(override.APIBase, parsed.APIBase, DefaultAPIBase), "/")
	if u, err := url.Parse(apiBase); err != nil || u.Scheme == "" || u.Host == "" {
		return Credentials{}, fmt.Errorf("%w: OPENAI_API_BASE %q must be an absolute URL", domain.ErrConfiguration, apiBase)
	}

	return Credentials{
		APIKey:  apiKey,
		APIBase: apiBase,
	}, nil
}

// ServerConfig holds process-level settings for the HTTP server and harness
type ServerConfig struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Language string `env:"ASR_LANGUAGE" envDefault:"en"`
	// AuthSecret enables bearer token checks on the API when set
	AuthSecret string `env:"AUTH_SECRET"`
}

// LoadServer parses ServerConfig from an environment source
func LoadServer(src Environment) (ServerConfig, error) {
	if src == nil {
		src = Environment{}
	}
	var cfg ServerConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: src}); err != nil {
		return ServerConfig{}, fmt.Errorf("parse server config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment when it exists.
// Variables that are already set are not overwritten.
func LoadDotEnv(path string) (bool, error) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
