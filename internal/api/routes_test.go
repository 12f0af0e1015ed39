package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/lafal/adapters/stt"
	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/domain/repositories"
	"github.com/satriahrh/lafal/internal/auth"
	"github.com/satriahrh/lafal/internal/config"
	"github.com/satriahrh/lafal/usecase"
)

func setupTestServer(t *testing.T, factory usecase.RecognizerFactory) *echo.Echo {
	t.Helper()
	logger := zaptest.NewLogger(t)
	e := echo.New()
	InitRoutes(e, usecase.NewTranscriptionService(factory, logger), "en", logger)
	return e
}

func mockFactory(logger *zap.Logger) usecase.RecognizerFactory {
	return func(string) (repositories.SpeechRecognizer, error) {
		return stt.NewMockSpeechRecognizer(logger), nil
	}
}

func whisperFactory(t *testing.T, apiBase string) usecase.RecognizerFactory {
	return func(language string) (repositories.SpeechRecognizer, error) {
		return usecase.GetASRModel(language, zap.NewNop(),
			usecase.WithEnvironment(config.Environment{"WHISPER_API_KEY": "sk-test", "OPENAI_API_BASE": apiBase}),
			usecase.WithWhisperOptions(stt.WithTempDir(t.TempDir())),
		)
	}
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func ones(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "0.1"
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestHealth(t *testing.T) {
	e := setupTestServer(t, mockFactory(zap.NewNop()))

	rec := doJSON(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestTranscriptions(t *testing.T) {
	e := setupTestServer(t, mockFactory(zap.NewNop()))

	tests := []struct {
		name      string
		body      string
		wantWords int
	}{
		{name: "flat samples", body: `{"samples": ` + ones(16000) + `}`, wantWords: 1},
		{name: "channel samples", body: `{"samples": [` + ones(32000) + `, [0.5]], "language": "de"}`, wantWords: 2},
		{name: "silence", body: `{"samples": [0, 0, 0, 0]}`, wantWords: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp TranscriptionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.WordLocations == nil {
				t.Fatal("Expected word_locations to be an array, got null")
			}
			if len(resp.WordLocations) != tt.wantWords {
				t.Errorf("Expected %d words, got %d", tt.wantWords, len(resp.WordLocations))
			}
		})
	}
}

func TestTranscriptions_DefaultLanguage(t *testing.T) {
	var languages []string
	e := setupTestServer(t, func(language string) (repositories.SpeechRecognizer, error) {
		languages = append(languages, language)
		return stt.NewMockSpeechRecognizer(zap.NewNop()), nil
	})

	doJSON(e, http.MethodPost, "/api/v1/transcriptions", `{"samples": [0.1]}`)
	doJSON(e, http.MethodPost, "/api/v1/transcriptions", `{"samples": [0.1], "language": "fr"}`)

	if len(languages) != 2 || languages[0] != "en" || languages[1] != "fr" {
		t.Errorf("Expected languages [en fr], got %v", languages)
	}
}

func TestTranscriptions_InvalidAudio(t *testing.T) {
	e := setupTestServer(t, mockFactory(zap.NewNop()))

	bodies := []string{
		`{"samples": [[[0.1]]]}`,
		`{"samples": "abc"}`,
		`{"samples": []}`,
		`{"language": "en"}`,
	}
	for _, body := range bodies {
		rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
			continue
		}
		if resp := decodeError(t, rec); resp.Error != "invalid_audio" {
			t.Errorf("%s: expected invalid_audio, got %s", body, resp.Error)
		}
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestTranscriptions_ConfigurationError(t *testing.T) {
	e := setupTestServer(t, func(language string) (repositories.SpeechRecognizer, error) {
		return usecase.GetASRModel(language, zap.NewNop(), usecase.WithEnvironment(config.Environment{}))
	})

	rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", `{"samples": [0.1]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "configuration_error" {
		t.Errorf("Expected configuration_error, got %s", resp.Error)
	}
}

func TestTranscriptions_ServiceError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "Incorrect API key provided"}}`)
	}))
	defer upstream.Close()

	e := setupTestServer(t, whisperFactory(t, upstream.URL))

	rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", `{"samples": [0.1, 0.2]}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error != "service_error" {
		t.Errorf("Expected service_error, got %s", resp.Error)
	}
	if resp.UpstreamStatus != http.StatusUnauthorized {
		t.Errorf("Expected upstream status 401, got %d", resp.UpstreamStatus)
	}
}

func TestTranscriptions_TransportError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	e := setupTestServer(t, whisperFactory(t, url))

	rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", `{"samples": [0.1, 0.2]}`)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("Expected 504, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "transport_error" {
		t.Errorf("Expected transport_error, got %s", resp.Error)
	}
}

func TestTranscriptions_Whisper(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"text": " Guten Tag", "words": [{"word": " Guten", "start": 0.1, "end": 0.4}, {"word": " Tag", "start": 0.4, "end": 0.9}]}`)
	}))
	defer upstream.Close()

	e := setupTestServer(t, whisperFactory(t, upstream.URL))

	rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", `{"samples": [[0.1, 0.2, 0.3]], "language": "de"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp TranscriptionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Text != " Guten Tag" {
		t.Errorf("Expected ' Guten Tag', got %q", resp.Text)
	}
	if len(resp.WordLocations) != 2 || resp.WordLocations[1].Word != "Tag" {
		t.Errorf("Unexpected word locations %+v", resp.WordLocations)
	}
}

func TestUnsupportedModels(t *testing.T) {
	e := setupTestServer(t, mockFactory(zap.NewNop()))

	for _, path := range []string{"/api/v1/tts", "/api/v1/translations"} {
		rec := doJSON(e, http.MethodPost, path, `{"text": "hallo", "language": "de"}`)
		if rec.Code != http.StatusNotImplemented {
			t.Errorf("%s: expected 501, got %d", path, rec.Code)
			continue
		}
		resp := decodeError(t, rec)
		if resp.Error != "not_implemented" {
			t.Errorf("%s: expected not_implemented, got %s", path, resp.Error)
		}
		if !strings.Contains(resp.Message, domain.ErrNotImplemented.Error()) {
			t.Errorf("%s: unexpected message %q", path, resp.Message)
		}
	}
}

func TestTranscriptions_Guarded(t *testing.T) {
	secret := []byte("route-secret")
	logger := zaptest.NewLogger(t)
	e := echo.New()
	InitRoutes(e, usecase.NewTranscriptionService(mockFactory(logger), logger), "en", logger, auth.Middleware(secret, logger))

	// health stays public
	if rec := doJSON(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected public health check, got %d", rec.Code)
	}

	body := `{"samples": [0.1]}`
	if rec := doJSON(e, http.MethodPost, "/api/v1/transcriptions", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", rec.Code)
	}

	token, err := auth.GenerateClientToken(secret, "trainer-web", time.Minute)
	if err != nil {
		t.Fatalf("GenerateClientToken failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcriptions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}
