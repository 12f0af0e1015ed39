package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lafal/domain"
	"github.com/satriahrh/lafal/internal/audio"
	"github.com/satriahrh/lafal/internal/config"
)

const (
	defaultWhisperModel   = "whisper-large-v3-turbo"
	defaultRequestTimeout = 30 * time.Second
	transcriptionsPath    = "/audio/transcriptions"
	uploadFilename        = "audio.wav"
	uploadContentType     = "audio/wav"
)

// WhisperClient calls an OpenAI-compatible /audio/transcriptions endpoint.
// It makes exactly one attempt per call.
type WhisperClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

// NewWhisperClient creates a client for creds.APIBase. A nil httpClient gets the
// default 30 second timeout; a client without a timeout is given one.
func NewWhisperClient(creds config.Credentials, model string, httpClient *http.Client, logger *zap.Logger) *WhisperClient {
	if model == "" {
		model = defaultWhisperModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	} else if httpClient.Timeout <= 0 {
		bounded := *httpClient
		bounded.Timeout = defaultRequestTimeout
		httpClient = &bounded
	}

	return &WhisperClient{
		endpoint: creds.APIBase + transcriptionsPath,
		apiKey:   creds.APIKey,
		model:    model,
		client:   httpClient,
		logger:   logger,
	}
}

// Endpoint returns the full transcription URL
func (wc *WhisperClient) Endpoint() string {
	return wc.endpoint
}

// Model returns the transcription model identifier sent with each request
func (wc *WhisperClient) Model() string {
	return wc.model
}

// Transcribe uploads the artifact and returns the raw response body of a 200 reply.
// Network failures and timeouts are *domain.TransportError; any other status
// is *domain.ServiceError.
func (wc *WhisperClient) Transcribe(ctx context.Context, artifact *audio.Artifact) ([]byte, error) {
	body, contentType, err := wc.createMultipartRequest(artifact)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request for %s: %v", domain.ErrConfiguration, wc.endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	req.Header.Set("Accept", "application/json")

	wc.logger.Debug("Sending transcription request",
		zap.String("endpoint", wc.endpoint),
		zap.String("model", wc.model))

	start := time.Now()
	resp, err := wc.client.Do(req)
	if err != nil {
		wc.logger.Error("Transcription request failed",
			zap.String("endpoint", wc.endpoint),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, &domain.TransportError{Endpoint: wc.endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Endpoint: wc.endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		wc.logger.Error("Recognition service returned error, make sure the API key is valid and has credits available",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, &domain.ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	wc.logger.Debug("Received transcription response",
		zap.Int("bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)))

	return respBody, nil
}

// createMultipartRequest builds the multipart/form-data body
func (wc *WhisperClient) createMultipartRequest(artifact *audio.Artifact) (io.Reader, string, error) {
	file, err := artifact.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: open audio artifact: %v", domain.ErrEncoding, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, uploadFilename))
	header.Set("Content-Type", uploadContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("%w: create form file: %v", domain.ErrEncoding, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("%w: copy audio data: %v", domain.ErrEncoding, err)
	}

	fields := []struct{ key, value string }{
		{"model", wc.model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "word"},
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("%w: write field %s: %v", domain.ErrEncoding, f.key, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: close multipart writer: %v", domain.ErrEncoding, err)
	}

	return &buf, w.FormDataContentType(), nil
}
